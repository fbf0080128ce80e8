package services

import (
	"errors"
	"fmt"
	"strconv"
)

// Error kinds for the progression engine. Callers classify with
// errors.Is; anything that doesn't match one of these is a storage or
// internal failure. ErrConflict marks a lost unique-pair insert race
// (duplicate badge, duplicate check-in, already-completed mission) and
// is treated as success-no-op on event paths.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func isConflict(err error) bool { return errors.Is(err, ErrConflict) }

func itoa(n int) string     { return strconv.Itoa(n) }
func itoa64(n int64) string { return strconv.FormatInt(n, 10) }
