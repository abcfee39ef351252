package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/greentech-platform/api/internal/domain"
	"github.com/greentech-platform/api/internal/pkg/clock"
	"github.com/greentech-platform/api/internal/pkg/id"
)

const (
	codeLength     = 6
	codeTTL        = 5 * time.Minute
	resendCooldown = 60 * time.Second
)

// CodeStore is the persistence seam for verification codes.
type CodeStore interface {
	// Put always inserts a new record; prior codes are never overwritten.
	Put(ctx context.Context, v *domain.VerificationCode) error
	// Latest returns the most-recently-created record for the key regardless
	// of validity, or domain.ErrNotFound.
	Latest(ctx context.Context, identifier string, ch domain.Channel, p domain.Purpose) (*domain.VerificationCode, error)
	// LatestValid returns the most-recently-created record for the key with
	// used=false and expires_at>now, or domain.ErrNotFound. Older still-live
	// codes are shadowed by a newer one.
	LatestValid(ctx context.Context, identifier string, ch domain.Channel, p domain.Purpose, now time.Time) (*domain.VerificationCode, error)
	// MarkUsed flips used=false to true for exactly one record. When the
	// record is already used (a concurrent verify won the race) it returns
	// domain.ErrNotFound.
	MarkUsed(ctx context.Context, lookupKey, codeID string) error
	// DeleteExpired removes every record with expires_at<=now, used or not,
	// and reports how many were deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Gateway delivers an issued code over the selected channel.
type Gateway interface {
	Send(ctx context.Context, identifier string, ch domain.Channel, code string, p domain.Purpose) error
}

type Service interface {
	Issue(ctx context.Context, identifier string, ch domain.Channel, p domain.Purpose) error
	Verify(ctx context.Context, identifier, code string, ch domain.Channel, p domain.Purpose) error
}

type service struct {
	store   CodeStore
	gateway Gateway
	clk     clock.Clock
}

func NewService(store CodeStore, gateway Gateway, clk clock.Clock) Service {
	return &service{store: store, gateway: gateway, clk: clk}
}

// Issue generates, persists and delivers a fresh 6-digit code.
// The cooldown check is best-effort: a racing second request inside the same
// window may slip through, which is acceptable.
func (s *service) Issue(ctx context.Context, identifier string, ch domain.Channel, p domain.Purpose) error {
	now := s.clk.Now()

	last, err := s.store.Latest(ctx, identifier, ch, p)
	switch {
	case err == nil:
		if since := now.Sub(last.CreatedAt); since < resendCooldown {
			slog.Info("code request inside cooldown window",
				"identifier", identifier, "channel", ch, "purpose", p, "since", since)
			return fmt.Errorf("last code issued %s ago: %w", since.Round(time.Second), domain.ErrRateLimited)
		}
	case errors.Is(err, domain.ErrNotFound):
		// first code for this key
	default:
		return err
	}

	code, err := randomCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	v := &domain.VerificationCode{
		LookupKey:  domain.CodeLookupKey(identifier, ch, p),
		CodeID:     id.New(),
		Identifier: identifier,
		Channel:    ch,
		Purpose:    p,
		Code:       code,
		Used:       false,
		CreatedAt:  now,
		ExpiresAt:  now.Add(codeTTL).Unix(),
	}
	if err := s.store.Put(ctx, v); err != nil {
		return err
	}

	// Delivery comes after persistence and is not rolled back on failure:
	// an undelivered code simply ages out and the user requests a new one.
	if err := s.gateway.Send(ctx, identifier, ch, code, p); err != nil {
		slog.Warn("code delivery failed", "identifier", identifier, "channel", ch, "purpose", p, "err", err)
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, err)
	}
	return nil
}

// Verify consumes the latest live code for the key when it matches.
// A mismatch leaves the record untouched so the user may retry until expiry.
func (s *service) Verify(ctx context.Context, identifier, code string, ch domain.Channel, p domain.Purpose) error {
	now := s.clk.Now()

	v, err := s.store.LatestValid(ctx, identifier, ch, p, now)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Info("no live code for verification attempt",
				"identifier", identifier, "channel", ch, "purpose", p)
			return domain.ErrInvalidOrExpiredCode
		}
		return err
	}

	if v.Code != code {
		slog.Info("code mismatch", "identifier", identifier, "channel", ch, "purpose", p)
		return domain.ErrIncorrectCode
	}

	if err := s.store.MarkUsed(ctx, v.LookupKey, v.CodeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// a concurrent verify consumed the record first
			return domain.ErrInvalidOrExpiredCode
		}
		return err
	}
	return nil
}

// randomCode draws each digit independently, so leading zeros are as likely
// as any other digit.
func randomCode() (string, error) {
	b := make([]byte, codeLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b[i] = byte('0' + n.Int64())
	}
	return string(b), nil
}
