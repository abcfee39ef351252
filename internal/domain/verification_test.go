package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChannel(t *testing.T) {
	tests := []struct {
		in      string
		want    Channel
		wantErr bool
	}{
		{"EMAIL", ChannelEmail, false},
		{"email", ChannelEmail, false},
		{"SMS", ChannelSMS, false},
		{"sms", ChannelSMS, false},
		{"PHONE", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseChannel(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			assert.True(t, errors.Is(err, ErrBadRequest))
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestParsePurpose(t *testing.T) {
	for _, valid := range []string{"REGISTER", "login", "FORGOT_PASSWORD", "RESET_PASSWORD", "CHANGE_EMAIL", "change_phone"} {
		_, err := ParsePurpose(valid)
		assert.NoError(t, err, valid)
	}
	_, err := ParsePurpose("DELETE_ACCOUNT")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestVerificationCode_Live(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v := &VerificationCode{ExpiresAt: now.Add(5 * time.Minute).Unix()}

	assert.True(t, v.Live(now))
	assert.True(t, v.Live(now.Add(5*time.Minute-time.Second)))
	// expiry boundary is exclusive: at expires_at the code is dead
	assert.False(t, v.Live(now.Add(5*time.Minute)))

	v.Used = true
	assert.False(t, v.Live(now))
}

func TestCodeLookupKey(t *testing.T) {
	assert.Equal(t, "a@example.com#EMAIL#REGISTER",
		CodeLookupKey("a@example.com", ChannelEmail, PurposeRegister))
}
