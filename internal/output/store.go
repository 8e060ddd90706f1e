// internal/output/store.go
package output

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/valpere/ProductScrapexter/internal/monitoring"
	"github.com/valpere/ProductScrapexter/internal/product"
	"github.com/valpere/ProductScrapexter/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
)

// DocumentStore is a destination collection with upsert-by-field semantics.
type DocumentStore interface {
	// Name identifies the collection in logs and metrics.
	Name() string
	// Upsert replaces the document whose field equals value, inserting when
	// none matches. It reports whether an insert happened.
	Upsert(ctx context.Context, field string, value interface{}, doc bson.M) (bool, error)
	EnsureIndexes(ctx context.Context, fields ...string) error
	Count(ctx context.Context) (int64, error)
}

// UploadStats summarizes one Upload call.
type UploadStats struct {
	Inserted int
	Updated  int
	Skipped  int
	Total    int64
}

func (s UploadStats) String() string {
	return fmt.Sprintf("%d new, %d updated, %d skipped (collection total %d)", s.Inserted, s.Updated, s.Skipped, s.Total)
}

// Uploader maps records and upserts them into a DocumentStore.
type Uploader struct {
	store   DocumentStore
	source  string
	now     func() time.Time
	metrics *monitoring.MetricsManager
	logger  utils.Logger
}

// UploaderOption customizes an Uploader.
type UploaderOption func(*Uploader)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) UploaderOption {
	return func(u *Uploader) { u.now = now }
}

// WithMetrics records upsert outcomes.
func WithMetrics(mm *monitoring.MetricsManager) UploaderOption {
	return func(u *Uploader) { u.metrics = mm }
}

// WithLogger replaces the component logger.
func WithLogger(logger utils.Logger) UploaderOption {
	return func(u *Uploader) { u.logger = logger }
}

// NewUploader creates an uploader stamping documents with source.
func NewUploader(store DocumentStore, source string, opts ...UploaderOption) *Uploader {
	if source == "" {
		source = DefaultSource
	}
	u := &Uploader{
		store:  store,
		source: source,
		now:    time.Now,
		logger: utils.NewComponentLogger("uploader"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload upserts every record. Records without an identifier are logged and
// skipped; a store error aborts the upload and is returned with the partial stats.
func (u *Uploader) Upload(ctx context.Context, records []product.VariantRecord) (UploadStats, error) {
	var stats UploadStats
	logger := u.logger.WithField("collection", u.store.Name())
	now := u.now()

	for i, rec := range records {
		doc, err := MapRecord(rec, now, u.source)
		if errors.Is(err, ErrNoIdentifier) {
			stats.Skipped++
			logger.Warnf("Skipping record %d: %v", i+1, err)
			continue
		}
		inserted, err := u.store.Upsert(ctx, doc.IdentifierField, doc.IdentifierValue, doc.Fields)
		if err != nil {
			u.metrics.RecordOutputError(u.store.Name())
			return stats, fmt.Errorf("upsert %s=%q: %w", doc.IdentifierField, doc.IdentifierValue, err)
		}
		u.metrics.RecordUpsert(u.store.Name(), inserted)
		if inserted {
			stats.Inserted++
		} else {
			stats.Updated++
		}
	}

	if err := u.store.EnsureIndexes(ctx, IndexedFields...); err != nil {
		return stats, fmt.Errorf("failed to create indexes: %w", err)
	}
	total, err := u.store.Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("failed to count documents: %w", err)
	}
	stats.Total = total
	logger.Infof("Upload complete: %s", stats)
	return stats, nil
}
