package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/avrorin/auth-api/internal/auth/dto"
	authErrors "github.com/avrorin/auth-api/internal/auth/errors"
	"github.com/avrorin/auth-api/internal/auth/mapper"
	"github.com/avrorin/auth-api/internal/auth/model"
	"github.com/avrorin/auth-api/internal/auth/token"
	"github.com/avrorin/auth-api/internal/config"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type userRepoStub struct{ users map[string]model.User }

func (u *userRepoStub) CreateUser(ctx context.Context, m model.User) (uuid.UUID, error) {
	u.users[m.ID.String()] = m
	return m.ID, nil
}
func (u *userRepoStub) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	for _, v := range u.users {
		if v.Email == email {
			return v, nil
		}
	}
	return model.User{}, authErrors.ErrNotFound
}
func (u *userRepoStub) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	v, ok := u.users[id.String()]
	if !ok {
		return model.User{}, authErrors.ErrNotFound
	}
	return v, nil
}
func (u *userRepoStub) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	for _, v := range u.users {
		if v.Username == username {
			return v, nil
		}
	}
	return model.User{}, authErrors.ErrNotFound
}
func (u *userRepoStub) UpdateUser(ctx context.Context, m model.User) error {
	u.users[m.ID.String()] = m
	return nil
}

// storeStub mimics the Redis hash semantics: token -> user id, one live
// token per user, rotation of an absent token leaves an unbound entry.
type storeStub struct{ bindings map[string]string }

func (s *storeStub) LookupUser(ctx context.Context, tok string) (string, error) {
	uid, ok := s.bindings[tok]
	if !ok || uid == "" {
		return "", authErrors.ErrNotFound
	}
	return uid, nil
}
func (s *storeStub) Assign(ctx context.Context, userID, tok string) error {
	for t, uid := range s.bindings {
		if uid == userID {
			delete(s.bindings, t)
			break
		}
	}
	if _, exists := s.bindings[tok]; !exists {
		s.bindings[tok] = userID
	}
	return nil
}
func (s *storeStub) Rotate(ctx context.Context, oldToken, newToken string) error {
	uid := s.bindings[oldToken]
	delete(s.bindings, oldToken)
	if _, exists := s.bindings[newToken]; !exists {
		s.bindings[newToken] = uid
	}
	return nil
}
func (s *storeStub) Revoke(ctx context.Context, userID string) error {
	for t, uid := range s.bindings {
		if uid == userID {
			delete(s.bindings, t)
			return nil
		}
	}
	return nil
}

type senderStub struct{ sent []string }

func (s *senderStub) SendPasswordResetEmail(addr, tok string) error {
	s.sent = append(s.sent, addr)
	return nil
}

type googleStub struct{ profile mapper.GoogleProfile }

func (g *googleStub) AuthCodeURL(state string) string { return "https://accounts.google.test/" + state }
func (g *googleStub) Authorize(ctx context.Context, code string) (mapper.GoogleProfile, error) {
	if code != "good-code" {
		return mapper.GoogleProfile{}, authErrors.NewInvalidArgument("authorization code exchange failed")
	}
	return g.profile, nil
}

type fixture struct {
	svc    AuthService
	users  *userRepoStub
	store  *storeStub
	sender *senderStub
	reset  *token.ResetCodec
	cfg    *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		SecretKey:       "test-secret",
		JWTAlgorithm:    "HS256",
		ServerName:      "auth.test:5000",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		ResetTokenTTL:   2 * time.Minute,
	}
	users := &userRepoStub{users: make(map[string]model.User)}
	store := &storeStub{bindings: make(map[string]string)}
	sender := &senderStub{}
	reset := token.NewResetCodec(cfg)
	svc := NewAuthService(
		users, store,
		token.NewAccessCodec(cfg), token.NewRefreshCodec(cfg), reset,
		sender, &googleStub{profile: mapper.GoogleProfile{
			Email: "jane@gmail.com", GivenName: "Jane", FamilyName: "Doe",
		}},
		cfg, validator.New(), zap.NewNop(),
	)
	return &fixture{svc: svc, users: users, store: store, sender: sender, reset: reset, cfg: cfg}
}

func (f *fixture) addUser(t *testing.T, username, email, password string) model.User {
	t.Helper()
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	require.NoError(t, err)
	u := model.User{
		ID: uuid.New(), Username: username, Email: email,
		PasswordHash: hash, IsActive: true, RegistrationDate: time.Now(),
	}
	f.users.users[u.ID.String()] = u
	return u
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", "S3cretPass")

	pair, err := f.svc.Login(context.Background(), dto.LoginDTO{Username: "alice", Password: "S3cretPass"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	uid, err := f.store.LookupUser(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, alice.ID.String(), uid)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "alice@example.com", "S3cretPass")

	_, err := f.svc.Login(context.Background(), dto.LoginDTO{Username: "alice", Password: "nope"})
	require.True(t, authErrors.IsInvalidCredentials(err))
}

func TestLogin_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login(context.Background(), dto.LoginDTO{Username: "ghost", Password: "whatever"})
	require.True(t, authErrors.IsInvalidCredentials(err))
}

func TestLogin_ReplacesPreviousRefreshToken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "alice@example.com", "S3cretPass")
	ctx := context.Background()

	first, err := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "S3cretPass"})
	require.NoError(t, err)
	second, err := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "S3cretPass"})
	require.NoError(t, err)

	_, err = f.store.LookupUser(ctx, first.RefreshToken)
	require.True(t, authErrors.IsNotFound(err))
	_, err = f.store.LookupUser(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_RotatesAndInvalidatesOldToken(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", "S3cretPass")
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "S3cretPass"})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, refreshed.RefreshToken)

	uid, err := f.store.LookupUser(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, alice.ID.String(), uid)

	// replaying the rotated-out token must be unauthorized
	_, err = f.svc.Refresh(ctx, dto.RefreshDTO{RefreshToken: pair.RefreshToken})
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestRefresh_MissingToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Refresh(context.Background(), dto.RefreshDTO{})
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestRefresh_GarbageToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Refresh(context.Background(), dto.RefreshDTO{RefreshToken: "garbage"})
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestRefresh_ValidSignatureButNotInStore(t *testing.T) {
	f := newFixture(t)
	// signed by us but never assigned: a validly signed token that the
	// store has no record of must read as unauthorized, never crash
	orphan, err := token.NewRefreshCodec(f.cfg).Create()
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), dto.RefreshDTO{RefreshToken: orphan})
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestRefresh_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	expiredCfg := *f.cfg
	expiredCfg.RefreshTokenTTL = -time.Minute
	expired, err := token.NewRefreshCodec(&expiredCfg).Create()
	require.NoError(t, err)
	// even a token the store knows about is rejected once expired
	require.NoError(t, f.store.Assign(context.Background(), "alice-id", expired))

	_, err = f.svc.Refresh(context.Background(), dto.RefreshDTO{RefreshToken: expired})
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", "S3cretPass")
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "S3cretPass"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, alice.ID))

	_, err = f.store.LookupUser(ctx, pair.RefreshToken)
	require.True(t, authErrors.IsNotFound(err))

	// logging out with no live refresh token is still fine
	require.NoError(t, f.svc.Logout(ctx, alice.ID))
}

func TestValidate_ResolvesUser(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", "S3cretPass")
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "S3cretPass"})
	require.NoError(t, err)

	user, err := f.svc.Validate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, alice.ID, user.ID)
}

func TestValidate_RefreshTokenIsNotAnAccessToken(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "alice@example.com", "S3cretPass")
	ctx := context.Background()

	pair, err := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "S3cretPass"})
	require.NoError(t, err)

	// same secret, but no subject claim: must not pass the guard
	_, err = f.svc.Validate(ctx, pair.RefreshToken)
	require.True(t, authErrors.IsInvalidToken(err))
}

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)
	id, err := f.svc.Register(context.Background(), dto.RegisterDTO{
		Username:     "bob",
		EmailAddress: "bob@example.com",
		FirstName:    "Bob",
		LastName:     "Smith",
		Password:     "longenough",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	u, err := f.users.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	require.True(t, u.IsActive)
	require.NotEqual(t, "longenough", u.PasswordHash)
}

func TestRegister_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "bob", "bob@example.com", "longenough")

	_, err := f.svc.Register(context.Background(), dto.RegisterDTO{
		Username:     "bob",
		EmailAddress: "other@example.com",
		FirstName:    "Bob",
		LastName:     "Smith",
		Password:     "longenough",
	})
	require.True(t, authErrors.IsAlreadyExists(err))
}

func TestRegister_Invalid(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), dto.RegisterDTO{Username: "x"})
	require.True(t, authErrors.IsInvalidArgument(err))
}

func TestForgotPassword_SendsMail(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "alice", "alice@example.com", "S3cretPass")

	err := f.svc.ForgotPassword(context.Background(), dto.ForgotPasswordDTO{EmailAddress: "alice@example.com"})
	require.NoError(t, err)
	require.Equal(t, []string{"alice@example.com"}, f.sender.sent)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	err := f.svc.ForgotPassword(context.Background(), dto.ForgotPasswordDTO{EmailAddress: "nobody@example.com"})
	require.True(t, authErrors.IsNotFound(err))
	require.Empty(t, f.sender.sent)
}

func TestCheckResetPasswordToken_MintsAccessToken(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", "S3cretPass")
	ctx := context.Background()

	resetToken, err := f.reset.Create(alice.ID.String())
	require.NoError(t, err)

	sessionToken, err := f.svc.CheckResetPasswordToken(ctx, resetToken)
	require.NoError(t, err)
	require.NotEqual(t, resetToken, sessionToken)

	user, err := f.svc.Validate(ctx, sessionToken)
	require.NoError(t, err)
	require.Equal(t, alice.ID, user.ID)
}

func TestCheckResetPasswordToken_ExpiredOrTampered(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", "S3cretPass")

	expiredCfg := *f.cfg
	expiredCfg.ResetTokenTTL = -time.Minute
	expired, err := token.NewResetCodec(&expiredCfg).Create(alice.ID.String())
	require.NoError(t, err)

	for _, tok := range []string{expired, "garbage"} {
		_, err := f.svc.CheckResetPasswordToken(context.Background(), tok)
		require.True(t, authErrors.IsResetTokenInvalid(err))
	}
}

func TestCheckResetPasswordToken_UnknownUser(t *testing.T) {
	f := newFixture(t)
	resetToken, err := f.reset.Create(uuid.NewString())
	require.NoError(t, err)

	_, err = f.svc.CheckResetPasswordToken(context.Background(), resetToken)
	require.True(t, authErrors.IsResetTokenInvalid(err))
}

func TestResetPassword_UpdatesHash(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", "S3cretPass")
	ctx := context.Background()

	require.NoError(t, f.svc.ResetPassword(ctx, alice, dto.ResetPasswordDTO{Password: "NewPass123"}))

	_, err := f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "NewPass123"})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, dto.LoginDTO{Username: "alice", Password: "S3cretPass"})
	require.True(t, authErrors.IsInvalidCredentials(err))
}

func TestResetPassword_TooShort(t *testing.T) {
	f := newFixture(t)
	alice := f.addUser(t, "alice", "alice@example.com", "S3cretPass")

	err := f.svc.ResetPassword(context.Background(), alice, dto.ResetPasswordDTO{Password: "short"})
	require.True(t, authErrors.IsInvalidArgument(err))
}

func TestGoogleLogin_CreatesUserOnFirstVisit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pair, err := f.svc.GoogleLogin(ctx, "good-code")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	user, err := f.users.GetUserByEmail(ctx, "jane@gmail.com")
	require.NoError(t, err)
	require.Equal(t, "jane", user.Username)

	uid, err := f.store.LookupUser(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), uid)
}

func TestGoogleLogin_ExistingUser(t *testing.T) {
	f := newFixture(t)
	jane := f.addUser(t, "jane", "jane@gmail.com", "S3cretPass")
	ctx := context.Background()

	pair, err := f.svc.GoogleLogin(ctx, "good-code")
	require.NoError(t, err)

	uid, err := f.store.LookupUser(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, jane.ID.String(), uid)
}

func TestGoogleLogin_BadCode(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.GoogleLogin(context.Background(), "bad-code")
	require.Error(t, err)
}
