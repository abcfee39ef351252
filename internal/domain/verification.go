package domain

import (
	"fmt"
	"strings"
	"time"
)

// Channel selects the delivery path for a verification code.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
)

// ParseChannel converts a request payload value into a Channel.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(strings.ToUpper(s)); c {
	case ChannelEmail, ChannelSMS:
		return c, nil
	default:
		return "", fmt.Errorf("unknown channel %q: %w", s, ErrBadRequest)
	}
}

// Purpose scopes a verification code to one intended use. A code issued for
// REGISTER never validates a LOGIN attempt.
type Purpose string

const (
	PurposeRegister       Purpose = "REGISTER"
	PurposeLogin          Purpose = "LOGIN"
	PurposeForgotPassword Purpose = "FORGOT_PASSWORD"
	PurposeResetPassword  Purpose = "RESET_PASSWORD"
	PurposeChangeEmail    Purpose = "CHANGE_EMAIL"
	PurposeChangePhone    Purpose = "CHANGE_PHONE"
)

// ParsePurpose converts a request payload value into a Purpose.
func ParsePurpose(s string) (Purpose, error) {
	switch p := Purpose(strings.ToUpper(s)); p {
	case PurposeRegister, PurposeLogin, PurposeForgotPassword,
		PurposeResetPassword, PurposeChangeEmail, PurposeChangePhone:
		return p, nil
	default:
		return "", fmt.Errorf("unknown purpose %q: %w", s, ErrBadRequest)
	}
}

// VerificationCode is one issued code.
// PK: lookup_key (identifier#channel#purpose), SK: code_id (ULID, so the SK
// order is the creation order). ExpiresAt is a Unix timestamp.
// Records are inserted once, flipped to used=true at most once by the
// verifier, and removed by the expiry sweeper.
type VerificationCode struct {
	LookupKey  string  `json:"-" dynamodbav:"lookup_key"`
	CodeID     string  `json:"code_id" dynamodbav:"code_id"`
	Identifier string  `json:"identifier" dynamodbav:"identifier"`
	Channel    Channel `json:"channel" dynamodbav:"channel"`
	Purpose    Purpose `json:"purpose" dynamodbav:"purpose"`
	Code       string  `json:"-" dynamodbav:"code"`
	Used       bool    `json:"used" dynamodbav:"used"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
	ExpiresAt  int64     `json:"expires_at" dynamodbav:"expires_at"` // Unix seconds
}

// CodeLookupKey builds the composite partition key for a code record.
func CodeLookupKey(identifier string, ch Channel, p Purpose) string {
	return identifier + "#" + string(ch) + "#" + string(p)
}

// Expired reports whether the code's lifetime has passed at the given instant.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.Unix() >= v.ExpiresAt
}

// Live reports whether the code can still be consumed at the given instant.
func (v *VerificationCode) Live(now time.Time) bool {
	return !v.Used && !v.Expired(now)
}
