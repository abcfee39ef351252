package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/greentech-platform/api/internal/domain"
	"github.com/greentech-platform/api/internal/pkg/clock"
	"github.com/greentech-platform/api/internal/pkg/id"
	"golang.org/x/crypto/bcrypt"
)

type SendCodeRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Purpose    string `json:"purpose" validate:"required"`
}

type PasswordLoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type CodeLoginRequest struct {
	Phone string `json:"phone" validate:"required"`
	Code  string `json:"code" validate:"required,len=6"`
}

type RegisterRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Code       string `json:"code" validate:"required,len=6"`
	Password   string `json:"password" validate:"required,min=8"`
	Name       string `json:"name"`
}

type ResetPasswordRequest struct {
	Identifier  string `json:"identifier" validate:"required"`
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// AuthResult is what every successful login or registration hands back.
type AuthResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// codeService issues and checks verification codes.
type codeService interface {
	Issue(ctx context.Context, identifier string, ch domain.Channel, p domain.Purpose) error
	Verify(ctx context.Context, identifier, code string, ch domain.Channel, p domain.Purpose) error
}

// userStore is the subset of the user repository the service needs.
type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// tokenProvider signs and parses the JWT pair.
type tokenProvider interface {
	SignAccess(userID string) (string, error)
	SignRefresh(userID string) (string, error)
	ParseSubject(tokenStr string) (string, error)
}

type Service interface {
	SendEmailCode(ctx context.Context, email string, p domain.Purpose) error
	SendPhoneCode(ctx context.Context, phone string, p domain.Purpose) error
	PasswordLogin(ctx context.Context, identifier, password string) (*AuthResult, error)
	PhoneCodeLogin(ctx context.Context, phone, code string) (*AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	CheckAccount(ctx context.Context, identifier string) (bool, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

type service struct {
	codes  codeService
	users  userStore
	tokens tokenProvider
	clk    clock.Clock
}

func NewService(codes codeService, users userStore, tokens tokenProvider, clk clock.Clock) Service {
	return &service{codes: codes, users: users, tokens: tokens, clk: clk}
}

func (s *service) SendEmailCode(ctx context.Context, email string, p domain.Purpose) error {
	return s.codes.Issue(ctx, email, domain.ChannelEmail, p)
}

func (s *service) SendPhoneCode(ctx context.Context, phone string, p domain.Purpose) error {
	return s.codes.Issue(ctx, phone, domain.ChannelSMS, p)
}

// PasswordLogin authenticates with identifier + password. The identifier is
// treated as an email when it contains "@", otherwise as a phone number.
func (s *service) PasswordLogin(ctx context.Context, identifier, password string) (*AuthResult, error) {
	u, err := s.lookupByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown account: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if err := s.ensureActive(u); err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		slog.Info("password login rejected", "user_id", u.UserID)
		return nil, fmt.Errorf("wrong password: %w", domain.ErrUnauthorized)
	}
	return s.authResult(u)
}

// PhoneCodeLogin authenticates an existing account with a LOGIN code.
func (s *service) PhoneCodeLogin(ctx context.Context, phone, code string) (*AuthResult, error) {
	if err := s.codes.Verify(ctx, phone, code, domain.ChannelSMS, domain.PurposeLogin); err != nil {
		return nil, err
	}
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no account for phone: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if err := s.ensureActive(u); err != nil {
		return nil, err
	}
	return s.authResult(u)
}

// Register creates a new account after verifying a REGISTER code sent to the
// identifier. The code is consumed before the uniqueness check, so a
// conflicting identifier costs the caller a fresh code.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	ch := channelFor(req.Identifier)
	if err := s.codes.Verify(ctx, req.Identifier, req.Code, ch, domain.PurposeRegister); err != nil {
		return nil, err
	}

	if _, err := s.lookupByIdentifier(ctx, req.Identifier); err == nil {
		return nil, fmt.Errorf("account already exists: %w", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	name := req.Name
	if name == "" {
		name = defaultName(req.Identifier)
	}

	now := s.clk.Now()
	u := &domain.User{
		UserID:       id.New(),
		Name:         name,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if ch == domain.ChannelEmail {
		u.Email = &req.Identifier
	} else {
		u.Phone = &req.Identifier
	}

	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	slog.Info("user registered", "user_id", u.UserID, "channel", ch)
	return s.authResult(u)
}

// ResetPassword rehashes the password after verifying a RESET_PASSWORD code.
func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	ch := channelFor(req.Identifier)
	if err := s.codes.Verify(ctx, req.Identifier, req.Code, ch, domain.PurposeResetPassword); err != nil {
		return err
	}

	u, err := s.lookupByIdentifier(ctx, req.Identifier)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{
		"password_hash": string(hash),
	}); err != nil {
		return err
	}
	slog.Info("password reset", "user_id", u.UserID)
	return nil
}

// Refresh trades a live refresh token for a fresh pair. Stateless: the old
// refresh token keeps working until its own expiry.
func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.tokens.ParseSubject(refreshToken)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("subject no longer exists: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if err := s.ensureActive(u); err != nil {
		return nil, err
	}

	access, err := s.tokens.SignAccess(u.UserID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.SignRefresh(u.UserID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// CheckAccount reports whether an account exists for the identifier.
func (s *service) CheckAccount(ctx context.Context, identifier string) (bool, error) {
	_, err := s.lookupByIdentifier(ctx, identifier)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (s *service) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureActive(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) lookupByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	if channelFor(identifier) == domain.ChannelEmail {
		return s.users.GetByEmail(ctx, identifier)
	}
	return s.users.GetByPhone(ctx, identifier)
}

func (s *service) ensureActive(u *domain.User) error {
	if u.DeletedAt != nil || u.Status != domain.UserStatusActive {
		return fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	return nil
}

func (s *service) authResult(u *domain.User) (*AuthResult, error) {
	access, err := s.tokens.SignAccess(u.UserID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.SignRefresh(u.UserID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

// defaultName derives a display name from the identifier: the local part of
// an email, or the last four digits of a phone number.
func defaultName(identifier string) string {
	if i := strings.IndexByte(identifier, '@'); i > 0 {
		return identifier[:i]
	}
	if len(identifier) > 4 {
		return "user" + identifier[len(identifier)-4:]
	}
	return "user"
}

func channelFor(identifier string) domain.Channel {
	if strings.Contains(identifier, "@") {
		return domain.ChannelEmail
	}
	return domain.ChannelSMS
}
