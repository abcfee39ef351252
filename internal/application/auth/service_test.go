package auth

import (
	"context"
	"testing"
	"time"

	"github.com/greentech-platform/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockCodes struct{ mock.Mock }

func (m *mockCodes) Issue(ctx context.Context, identifier string, ch domain.Channel, p domain.Purpose) error {
	return m.Called(ctx, identifier, ch, p).Error(0)
}

func (m *mockCodes) Verify(ctx context.Context, identifier, code string, ch domain.Channel, p domain.Purpose) error {
	return m.Called(ctx, identifier, code, ch, p).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUsers) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUsers) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUsers) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) SignAccess(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *mockTokens) SignRefresh(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *mockTokens) ParseSubject(tokenStr string) (string, error) {
	args := m.Called(tokenStr)
	return args.String(0), args.Error(1)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(codes *mockCodes, users *mockUsers, tokens *mockTokens) Service {
	return NewService(codes, users, tokens, fixedClock{t: testNow})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func activeUser(t *testing.T, password string) *domain.User {
	email := "user@example.com"
	return &domain.User{
		UserID:       "01USER",
		Email:        &email,
		Name:         "Test User",
		PasswordHash: hashOf(t, password),
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
	}
}

func expectTokenPair(tokens *mockTokens, userID string) {
	tokens.On("SignAccess", userID).Return("access-"+userID, nil)
	tokens.On("SignRefresh", userID).Return("refresh-"+userID, nil)
}

func TestPasswordLogin_Success(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	u := activeUser(t, "s3cret-pass")
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(u, nil)
	expectTokenPair(tokens, u.UserID)

	res, err := newTestService(codes, users, tokens).PasswordLogin(context.Background(), "user@example.com", "s3cret-pass")

	require.NoError(t, err)
	assert.Equal(t, u.UserID, res.User.UserID)
	assert.Equal(t, "access-01USER", res.AccessToken)
	assert.Equal(t, "refresh-01USER", res.RefreshToken)
}

func TestPasswordLogin_WrongPassword(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(activeUser(t, "s3cret-pass"), nil)

	_, err := newTestService(codes, users, tokens).PasswordLogin(context.Background(), "user@example.com", "wrong")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	tokens.AssertNotCalled(t, "SignAccess", mock.Anything)
}

func TestPasswordLogin_UnknownAccount(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, domain.ErrNotFound)

	_, err := newTestService(codes, users, tokens).PasswordLogin(context.Background(), "ghost@example.com", "whatever")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestPasswordLogin_PhoneIdentifierRoutesToPhoneLookup(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	u := activeUser(t, "s3cret-pass")
	phone := "+15550001111"
	u.Email, u.Phone = nil, &phone
	users.On("GetByPhone", mock.Anything, phone).Return(u, nil)
	expectTokenPair(tokens, u.UserID)

	_, err := newTestService(codes, users, tokens).PasswordLogin(context.Background(), phone, "s3cret-pass")

	require.NoError(t, err)
	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestPasswordLogin_DisabledAccount(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	u := activeUser(t, "s3cret-pass")
	u.Status = domain.UserStatusDisabled
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(u, nil)

	_, err := newTestService(codes, users, tokens).PasswordLogin(context.Background(), "user@example.com", "s3cret-pass")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPhoneCodeLogin_Success(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	phone := "+15550001111"
	u := activeUser(t, "irrelevant")
	u.Email, u.Phone = nil, &phone
	codes.On("Verify", mock.Anything, phone, "123456", domain.ChannelSMS, domain.PurposeLogin).Return(nil)
	users.On("GetByPhone", mock.Anything, phone).Return(u, nil)
	expectTokenPair(tokens, u.UserID)

	res, err := newTestService(codes, users, tokens).PhoneCodeLogin(context.Background(), phone, "123456")

	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}

func TestPhoneCodeLogin_BadCode(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	codes.On("Verify", mock.Anything, "+15550001111", "000000", domain.ChannelSMS, domain.PurposeLogin).
		Return(domain.ErrIncorrectCode)

	_, err := newTestService(codes, users, tokens).PhoneCodeLogin(context.Background(), "+15550001111", "000000")

	assert.ErrorIs(t, err, domain.ErrIncorrectCode)
	users.AssertNotCalled(t, "GetByPhone", mock.Anything, mock.Anything)
}

func TestPhoneCodeLogin_NoAccount(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	codes.On("Verify", mock.Anything, "+15550001111", "123456", domain.ChannelSMS, domain.PurposeLogin).Return(nil)
	users.On("GetByPhone", mock.Anything, "+15550001111").Return(nil, domain.ErrNotFound)

	_, err := newTestService(codes, users, tokens).PhoneCodeLogin(context.Background(), "+15550001111", "123456")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegister_EmailSuccess(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	codes.On("Verify", mock.Anything, "new@example.com", "123456", domain.ChannelEmail, domain.PurposeRegister).Return(nil)
	users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, domain.ErrNotFound)

	var created *domain.User
	users.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)
	tokens.On("SignAccess", mock.AnythingOfType("string")).Return("access", nil)
	tokens.On("SignRefresh", mock.AnythingOfType("string")).Return("refresh", nil)

	res, err := newTestService(codes, users, tokens).Register(context.Background(), RegisterRequest{
		Identifier: "new@example.com",
		Code:       "123456",
		Password:   "long-enough-pass",
		Name:       "New User",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	require.NotNil(t, created.Email)
	assert.Equal(t, "new@example.com", *created.Email)
	assert.Nil(t, created.Phone)
	assert.Equal(t, domain.RoleUser, created.Role)
	assert.Equal(t, domain.UserStatusActive, created.Status)
	assert.NotEqual(t, "long-enough-pass", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("long-enough-pass")))
	assert.Equal(t, created.UserID, res.User.UserID)
}

func TestRegister_MissingNameDerivedFromIdentifier(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	codes.On("Verify", mock.Anything, "new@example.com", "123456", domain.ChannelEmail, domain.PurposeRegister).Return(nil)
	users.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, domain.ErrNotFound)

	var created *domain.User
	users.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)
	tokens.On("SignAccess", mock.AnythingOfType("string")).Return("access", nil)
	tokens.On("SignRefresh", mock.AnythingOfType("string")).Return("refresh", nil)

	_, err := newTestService(codes, users, tokens).Register(context.Background(), RegisterRequest{
		Identifier: "new@example.com",
		Code:       "123456",
		Password:   "long-enough-pass",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "new", created.Name)
}

func TestRegister_ExistingAccountConflicts(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	codes.On("Verify", mock.Anything, "user@example.com", "123456", domain.ChannelEmail, domain.PurposeRegister).Return(nil)
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(activeUser(t, "x"), nil)

	_, err := newTestService(codes, users, tokens).Register(context.Background(), RegisterRequest{
		Identifier: "user@example.com",
		Code:       "123456",
		Password:   "long-enough-pass",
		Name:       "Dup",
	})

	assert.ErrorIs(t, err, domain.ErrConflict)
	users.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_InvalidCodeStopsEverything(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	codes.On("Verify", mock.Anything, "new@example.com", "999999", domain.ChannelEmail, domain.PurposeRegister).
		Return(domain.ErrInvalidOrExpiredCode)

	_, err := newTestService(codes, users, tokens).Register(context.Background(), RegisterRequest{
		Identifier: "new@example.com",
		Code:       "999999",
		Password:   "long-enough-pass",
		Name:       "New User",
	})

	assert.ErrorIs(t, err, domain.ErrInvalidOrExpiredCode)
	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestResetPassword_Success(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	u := activeUser(t, "old-password")
	codes.On("Verify", mock.Anything, "user@example.com", "123456", domain.ChannelEmail, domain.PurposeResetPassword).Return(nil)
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(u, nil)

	var updates map[string]interface{}
	users.On("Update", mock.Anything, u.UserID, mock.Anything).
		Run(func(args mock.Arguments) { updates = args.Get(2).(map[string]interface{}) }).
		Return(nil)

	err := newTestService(codes, users, tokens).ResetPassword(context.Background(), ResetPasswordRequest{
		Identifier:  "user@example.com",
		Code:        "123456",
		NewPassword: "brand-new-pass",
	})

	require.NoError(t, err)
	require.Contains(t, updates, "password_hash")
	hash := updates["password_hash"].(string)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("brand-new-pass")))
}

func TestResetPassword_BadCode(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	codes.On("Verify", mock.Anything, "user@example.com", "000000", domain.ChannelEmail, domain.PurposeResetPassword).
		Return(domain.ErrIncorrectCode)

	err := newTestService(codes, users, tokens).ResetPassword(context.Background(), ResetPasswordRequest{
		Identifier:  "user@example.com",
		Code:        "000000",
		NewPassword: "brand-new-pass",
	})

	assert.ErrorIs(t, err, domain.ErrIncorrectCode)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_IssuesNewPair(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	u := activeUser(t, "x")
	tokens.On("ParseSubject", "old-refresh").Return(u.UserID, nil)
	users.On("Get", mock.Anything, u.UserID).Return(u, nil)
	expectTokenPair(tokens, u.UserID)

	pair, err := newTestService(codes, users, tokens).Refresh(context.Background(), "old-refresh")

	require.NoError(t, err)
	assert.Equal(t, "access-01USER", pair.AccessToken)
	assert.Equal(t, "refresh-01USER", pair.RefreshToken)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	tokens.On("ParseSubject", "stale").Return("", domain.ErrTokenExpired)

	_, err := newTestService(codes, users, tokens).Refresh(context.Background(), "stale")

	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	users.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestRefresh_SubjectGone(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	tokens.On("ParseSubject", "orphan").Return("01GONE", nil)
	users.On("Get", mock.Anything, "01GONE").Return(nil, domain.ErrNotFound)

	_, err := newTestService(codes, users, tokens).Refresh(context.Background(), "orphan")

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCheckAccount(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	users.On("GetByEmail", mock.Anything, "user@example.com").Return(activeUser(t, "x"), nil)
	users.On("GetByPhone", mock.Anything, "+15550009999").Return(nil, domain.ErrNotFound)

	svc := newTestService(codes, users, tokens)

	exists, err := svc.CheckAccount(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = svc.CheckAccount(context.Background(), "+15550009999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSendCode_RoutesByChannel(t *testing.T) {
	codes, users, tokens := &mockCodes{}, &mockUsers{}, &mockTokens{}
	codes.On("Issue", mock.Anything, "user@example.com", domain.ChannelEmail, domain.PurposeRegister).Return(nil)
	codes.On("Issue", mock.Anything, "+15550001111", domain.ChannelSMS, domain.PurposeLogin).Return(nil)

	svc := newTestService(codes, users, tokens)

	require.NoError(t, svc.SendEmailCode(context.Background(), "user@example.com", domain.PurposeRegister))
	require.NoError(t, svc.SendPhoneCode(context.Background(), "+15550001111", domain.PurposeLogin))
	codes.AssertExpectations(t)
}
