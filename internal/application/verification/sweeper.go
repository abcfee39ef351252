package verification

import (
	"context"
	"log/slog"

	"github.com/greentech-platform/api/internal/pkg/clock"
)

// Sweeper purges expired code records, used or not. It runs as a scheduled
// job; the scheduler logs and swallows its errors so a failed sweep never
// blocks the next run.
type Sweeper struct {
	store CodeStore
	clk   clock.Clock
}

func NewSweeper(store CodeStore, clk clock.Clock) *Sweeper {
	return &Sweeper{store: store, clk: clk}
}

func (s *Sweeper) Name() string { return "verification-code-sweeper" }

func (s *Sweeper) Run(ctx context.Context) error {
	deleted, err := s.store.DeleteExpired(ctx, s.clk.Now())
	if err != nil {
		return err
	}
	if deleted > 0 {
		slog.Debug("purged expired verification codes", "deleted", deleted)
	}
	return nil
}
