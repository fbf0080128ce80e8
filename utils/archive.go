// utils/archive.go
package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"venue-guide-system/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2LedgerArchiver writes closed months of the XP ledger to R2 as
// JSONL, one object per month.
type R2LedgerArchiver struct {
	client *s3.Client
	bucket string
}

// InitLedgerArchive builds the archiver from env. Returns (nil, nil)
// when R2 is not configured, which disables archival without failing
// startup.
func InitLedgerArchive() (*R2LedgerArchiver, error) {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	accessKeySecret := os.Getenv("R2_ACCESS_KEY_SECRET")
	bucket := os.Getenv("R2_BUCKET_NAME")

	if accountID == "" || accessKeyID == "" || accessKeySecret == "" || bucket == "" {
		return nil, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion("auto"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, accessKeySecret, "",
		)),
		config.WithEndpointResolver(aws.EndpointResolverFunc(
			func(service, region string) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
				}, nil
			}),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 config: %w", err)
	}

	return &R2LedgerArchiver{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// ArchiveMonth uploads the month's transactions as a JSONL object,
// e.g. "ledger/2026-07.jsonl". Overwriting an existing object is fine:
// the ledger is append-only, so a re-run produces the same content.
func (a *R2LedgerArchiver) ArchiveMonth(monthStart time.Time, rows []models.XPTransaction) error {
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode ledger row %s: %w", r.ID, err)
		}
	}

	key := fmt.Sprintf("ledger/%s.jsonl", monthStart.Format("2006-01"))
	_, err := a.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        buf,
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload ledger archive %s: %w", key, err)
	}
	return nil
}
