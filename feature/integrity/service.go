package integrity

import (
	"context"
	"errors"

	"github.com/Sydwelll/nft-marketplace-backend/core/storage"
	"github.com/Sydwelll/nft-marketplace-backend/feature/integrity/checks"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/journal"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ErrStorageDisabled is returned by storage checks when no client is configured.
var ErrStorageDisabled = errors.New("journal storage is disabled")

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	db     *gorm.DB
	flight singleflight.Group
}

// NewService creates a new integrity service. client may be nil when the
// journal bucket is disabled; db may be nil when no database is connected.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		logger: logger,
		db:     db,
	}
}

// Report is the combined result of all checks. A failed check carries its
// error message instead of a result.
type Report struct {
	Structure any `json:"structure"`
	Schema    any `json:"schema"`
	Ledger    any `json:"ledger"`
	Journal   any `json:"journal"`
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	return checks.CheckStructure(ctx, s.client, s.bucket)
}

// FixStructure creates the bucket if needed and the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.client == nil {
		return ErrStorageDisabled
	}
	if err := checks.EnsureBucket(ctx, s.client, s.bucket, "", s.logger); err != nil {
		return err
	}
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckSchema verifies the ledger tables.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// CheckLedger replays the journal against the item table.
func (s *Service) CheckLedger(ctx context.Context) (*checks.LedgerReport, error) {
	return checks.CheckLedger(ctx, s.db)
}

// CheckJournal lists events missing from the bucket or published with a
// different body, and optionally uploads them again.
func (s *Service) CheckJournal(ctx context.Context, fix bool) (*checks.JournalReport, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	publisher := journal.NewPublisher(s.client, s.bucket)

	report, upload, err := checks.CheckJournal(ctx, s.db, publisher)
	if err != nil {
		return nil, err
	}
	if fix && len(upload) > 0 {
		if err := checks.FixJournal(ctx, publisher, s.logger, upload); err != nil {
			return report, err
		}
		report.Published += len(report.Missing)
		report.Missing = []uint64{}
		report.Mismatched = []uint64{}
	}
	return report, nil
}

// CheckAll runs every check concurrently. Callers arriving while a run is in
// progress share its report.
func (s *Service) CheckAll(ctx context.Context) *Report {
	v, _, _ := s.flight.Do("all", func() (any, error) {
		return s.checkAll(ctx), nil
	})
	return v.(*Report)
}

func (s *Service) checkAll(ctx context.Context) *Report {
	report := &Report{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		missing, err := s.CheckStructure(ctx)
		report.Structure = result(map[string]any{"missing": missing}, err)
		return nil
	})
	g.Go(func() error {
		r, err := s.CheckSchema()
		report.Schema = result(r, err)
		return nil
	})
	g.Go(func() error {
		r, err := s.CheckLedger(ctx)
		report.Ledger = result(r, err)
		return nil
	})
	g.Go(func() error {
		r, err := s.CheckJournal(ctx, false)
		report.Journal = result(r, err)
		return nil
	})

	_ = g.Wait()
	return report
}

func result(v any, err error) any {
	if err != nil {
		return map[string]any{"status": "error", "error": err.Error()}
	}
	return v
}
