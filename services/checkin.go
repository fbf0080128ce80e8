package services

import (
	"log"
	"time"

	"venue-guide-system/models"

	"github.com/gosimple/slug"
)

// CheckInStore persists check-ins. Create must return ErrConflict when
// the (user, venue, day) dedupe key already exists.
type CheckInStore interface {
	CreateCheckIn(ci *models.CheckIn) error
	EstablishmentByID(id string) (models.Establishment, error)
	ListCheckInsForUser(userID string, limit int) ([]models.CheckIn, error)
}

// CheckInService geofences submissions against the venue's coordinates
// and feeds verified check-ins into mission tracking.
type CheckInService struct {
	CheckIns     CheckInStore
	Missions     *MissionService
	RadiusMeters float64
}

func NewCheckInService(checkIns CheckInStore, missions *MissionService) *CheckInService {
	return &CheckInService{
		CheckIns:     checkIns,
		Missions:     missions,
		RadiusMeters: DefaultCheckInRadiusMeters,
	}
}

// Submit records a check-in and, when it lands inside the geofence,
// runs the progression chain. An unverified check-in is stored for
// history but earns nothing. A repeat at the same venue on the same
// reference-timezone day returns ErrConflict.
func (s *CheckInService) Submit(userID, establishmentID string, lat, lng float64) (models.CheckIn, error) {
	if userID == "" {
		return models.CheckIn{}, validationf("user id is required")
	}
	if establishmentID == "" {
		return models.CheckIn{}, validationf("establishment id is required")
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return models.CheckIn{}, validationf("coordinates out of range")
	}

	est, err := s.CheckIns.EstablishmentByID(establishmentID)
	if err != nil {
		return models.CheckIn{}, err
	}

	now := time.Now()
	verified, dist := WithinRadius(lat, lng, est.Latitude, est.Longitude, s.RadiusMeters)

	ci := models.CheckIn{
		UserID:          userID,
		EstablishmentID: est.ID,
		CheckinDay:      DayKey(now),
		Zone:            slug.Make(est.Zone),
		Latitude:        lat,
		Longitude:       lng,
		DistanceMeters:  dist,
		Verified:        verified,
	}
	if err := s.CheckIns.CreateCheckIn(&ci); err != nil {
		return models.CheckIn{}, err
	}

	if err := s.Missions.OnCheckIn(ci, now); err != nil {
		// Progression failures never undo the stored check-in.
		log.Printf("⚠️ check-in progression failed: user=%s venue=%s: %v", userID, est.ID, err)
	}
	return ci, nil
}

// Recent returns the user's latest check-ins, newest first.
func (s *CheckInService) Recent(userID string, limit int) ([]models.CheckIn, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.CheckIns.ListCheckInsForUser(userID, limit)
}
