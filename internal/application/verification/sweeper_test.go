package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/greentech-platform/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSweeper_DeletesOnlyExpiredRows(t *testing.T) {
	st := &memStore{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	expiredUnused := &domain.VerificationCode{LookupKey: "a#EMAIL#REGISTER", CodeID: "1", ExpiresAt: now.Add(-time.Minute).Unix()}
	expiredUsed := &domain.VerificationCode{LookupKey: "b#SMS#LOGIN", CodeID: "2", Used: true, ExpiresAt: now.Add(-time.Hour).Unix()}
	live := &domain.VerificationCode{LookupKey: "c#EMAIL#LOGIN", CodeID: "3", ExpiresAt: now.Add(time.Minute).Unix()}
	for _, r := range []*domain.VerificationCode{expiredUnused, expiredUsed, live} {
		require.NoError(t, st.Put(context.Background(), r))
	}

	sw := NewSweeper(st, fixedClock{now})
	require.NoError(t, sw.Run(context.Background()))

	// both expired rows gone regardless of used flag, the live one intact
	assert.Len(t, st.records, 1)
	assert.Equal(t, "3", st.records[0].CodeID)
}

func TestSweeper_PropagatesStoreError(t *testing.T) {
	st := &mockCodeStore{}
	st.On("DeleteExpired", mock.Anything, mock.Anything).Return(0, errors.New("table unavailable"))

	sw := NewSweeper(st, fixedClock{testNow})
	err := sw.Run(context.Background())
	require.Error(t, err)
}

func TestSweeper_Name(t *testing.T) {
	assert.Equal(t, "verification-code-sweeper", NewSweeper(&memStore{}, fixedClock{testNow}).Name())
}
