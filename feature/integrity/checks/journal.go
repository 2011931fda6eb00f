package checks

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sydwelll/nft-marketplace-backend/core/storage"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/journal"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/models"
	"github.com/Sydwelll/nft-marketplace-backend/feature/market/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// fetchLimit bounds concurrent downloads while comparing published entries.
const fetchLimit = 8

// JournalReport lists events stored in the database but absent from the
// bucket, and published events whose object differs from the stored row.
type JournalReport struct {
	Stored     int      `json:"stored"`
	Published  int      `json:"published"`
	Missing    []uint64 `json:"missing"`
	Mismatched []uint64 `json:"mismatched"`
}

// CheckJournal compares the event table with the objects in the bucket. It
// returns the events that need uploading, in sequence order.
func CheckJournal(ctx context.Context, db *gorm.DB, publisher *journal.Publisher) (*JournalReport, []models.Event, error) {
	if db == nil {
		return nil, nil, fmt.Errorf("database connection is nil")
	}

	events, err := store.New(db).Events(ctx, 0, 0)
	if err != nil {
		return nil, nil, err
	}
	published, err := publisher.Published(ctx)
	if err != nil {
		return nil, nil, err
	}

	stale := make([]bool, len(events))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchLimit)
	for i, ev := range events {
		if _, ok := published[ev.Seq]; !ok {
			continue
		}
		g.Go(func() error {
			entry, err := publisher.Fetch(gctx, ev.Seq)
			switch {
			case errors.Is(err, storage.ErrMalformedObject):
				stale[i] = true
			case err != nil:
				return err
			default:
				stale[i] = !entry.Matches(ev)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	report := &JournalReport{
		Stored:     len(events),
		Published:  len(published),
		Missing:    []uint64{},
		Mismatched: []uint64{},
	}
	var upload []models.Event
	for i, ev := range events {
		if _, ok := published[ev.Seq]; !ok {
			report.Missing = append(report.Missing, ev.Seq)
			upload = append(upload, ev)
			continue
		}
		if stale[i] {
			report.Mismatched = append(report.Mismatched, ev.Seq)
			upload = append(upload, ev)
		}
	}
	return report, upload, nil
}

// FixJournal uploads the given events, overwriting stale objects.
func FixJournal(ctx context.Context, publisher *journal.Publisher, logger *zap.Logger, upload []models.Event) error {
	if err := publisher.Publish(ctx, upload...); err != nil {
		logger.Error("Failed to republish events", zap.Error(err))
		return err
	}
	logger.Info("Republished events", zap.Int("count", len(upload)))
	return nil
}
