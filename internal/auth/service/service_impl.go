package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/avrorin/auth-api/internal/auth/dto"
	customErrors "github.com/avrorin/auth-api/internal/auth/errors"
	"github.com/avrorin/auth-api/internal/auth/mapper"
	"github.com/avrorin/auth-api/internal/auth/model"
	"github.com/avrorin/auth-api/internal/auth/token"
	"github.com/avrorin/auth-api/internal/config"
	"github.com/avrorin/auth-api/internal/mail"
	"github.com/avrorin/auth-api/internal/repo"
	validate "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type authService struct {
	userRepo   repo.UserRepo
	tokenStore repo.RefreshTokenStore
	access     *token.AccessCodec
	refresh    *token.RefreshCodec
	reset      *token.ResetCodec
	sender     mail.Sender
	google     GoogleAuthenticator
	cfg        *config.Config
	v          *validate.Validate
	log        *zap.Logger
}

func (a *authService) Login(ctx context.Context, d dto.LoginDTO) (model.TokenPair, error) {
	if err := a.v.Struct(d); err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	user, err := a.userRepo.GetUserByUsername(ctx, d.Username)
	if errors.Is(err, customErrors.ErrNotFound) {
		a.log.Warn("login failed: unknown username")
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := argon2id.ComparePasswordAndHash(d.Password, user.PasswordHash)
	if err != nil {
		// a placeholder hash from social signup is not a valid argon2id
		// string; treat it like any wrong password
		a.log.Warn("login failed: password hash comparison", zap.Error(err))
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}
	if !ok {
		a.log.Warn("login failed: incorrect password", zap.String("user_id", user.ID.String()))
		return model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	return a.issuePair(ctx, user.ID.String())
}

func (a *authService) Refresh(ctx context.Context, d dto.RefreshDTO) (model.TokenPair, error) {
	// every terminal failure of this flow must look identical to the
	// client, so validation failures collapse into the token error too
	if d.RefreshToken == "" {
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	// the decoded claims are deliberately discarded: the decode is only
	// a signature/expiry gate, the subject comes from the store
	if _, err := a.refresh.Decode(d.RefreshToken); err != nil {
		if customErrors.IsTokenExpired(err) {
			a.log.Warn("refresh rejected: token expired")
		} else {
			a.log.Warn("refresh rejected: token malformed")
		}
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}

	userID, err := a.tokenStore.LookupUser(ctx, d.RefreshToken)
	if errors.Is(err, customErrors.ErrNotFound) {
		a.log.Warn("refresh rejected: token not in store")
		return model.TokenPair{}, customErrors.ErrInvalidToken
	}
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	accessToken, err := a.access.Create(userID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}
	newRefreshToken, err := a.refresh.Create()
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}
	if err := a.tokenStore.Rotate(ctx, d.RefreshToken, newRefreshToken); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "Refresh")
	}

	a.log.Info("tokens refreshed", zap.String("user_id", userID))
	return model.TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

func (a *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := a.tokenStore.Revoke(ctx, userID.String()); err != nil {
		return customErrors.WrapInternal(err, "Logout")
	}
	a.log.Info("user logged out", zap.String("user_id", userID.String()))
	return nil
}

func (a *authService) Validate(ctx context.Context, accessToken string) (model.User, error) {
	claims, err := a.access.Decode(accessToken)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}
	if claims.Rid == "" {
		// refresh tokens decode on the same secret but carry no subject
		return model.User{}, customErrors.ErrInvalidToken
	}

	uid, err := uuid.Parse(claims.Rid)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}
	user, err := a.userRepo.GetUserByID(ctx, uid)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidToken
	}
	return user, nil
}

func (a *authService) Register(ctx context.Context, d dto.RegisterDTO) (uuid.UUID, error) {
	if err := a.v.Struct(d); err != nil {
		return uuid.Nil, customErrors.NewInvalidArgument(err.Error())
	}

	if _, err := a.userRepo.GetUserByUsername(ctx, d.Username); err == nil {
		return uuid.Nil, customErrors.ErrAlreadyExists
	}
	if _, err := a.userRepo.GetUserByEmail(ctx, d.EmailAddress); err == nil {
		return uuid.Nil, customErrors.ErrAlreadyExists
	}

	passwordHash, err := argon2id.CreateHash(d.Password, argon2id.DefaultParams)
	if err != nil {
		return uuid.Nil, customErrors.WrapInternal(err, "Register")
	}

	user := model.User{
		ID:               uuid.New(),
		Username:         d.Username,
		Email:            d.EmailAddress,
		PasswordHash:     passwordHash,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Phone:            d.Phone,
		RegistrationDate: time.Now(),
		IsActive:         true,
	}
	id, err := a.userRepo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, customErrors.ErrAlreadyExists) {
			return uuid.Nil, customErrors.ErrAlreadyExists
		}
		return uuid.Nil, customErrors.WrapInternal(err, "Register")
	}

	a.log.Info("user registered", zap.String("user_id", id.String()))
	return id, nil
}

func (a *authService) ForgotPassword(ctx context.Context, d dto.ForgotPasswordDTO) error {
	if err := a.v.Struct(d); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, d.EmailAddress)
	if errors.Is(err, customErrors.ErrNotFound) {
		// this flow intentionally reveals whether the address exists
		return customErrors.ErrNotFound
	}
	if err != nil {
		return customErrors.WrapInternal(err, "ForgotPassword")
	}

	resetToken, err := a.reset.Create(user.ID.String())
	if err != nil {
		return customErrors.WrapInternal(err, "ForgotPassword")
	}

	// delivery is fire-and-forget: a broken SMTP relay must not turn
	// into a user-visible failure
	if err := a.sender.SendPasswordResetEmail(user.Email, resetToken); err != nil {
		a.log.Error("failed to send password reset email", zap.Error(err))
	}
	return nil
}

func (a *authService) CheckResetPasswordToken(ctx context.Context, resetToken string) (string, error) {
	rid, err := a.reset.Decode(resetToken)
	if err != nil {
		return "", customErrors.ErrResetTokenInvalid
	}

	uid, err := uuid.Parse(rid)
	if err != nil {
		return "", customErrors.ErrResetTokenInvalid
	}
	if _, err := a.userRepo.GetUserByID(ctx, uid); err != nil {
		return "", customErrors.ErrResetTokenInvalid
	}

	// the reset token is not returned again; a fresh access token acts
	// as the reset-session credential
	accessToken, err := a.access.Create(rid)
	if err != nil {
		return "", customErrors.WrapInternal(err, "CheckResetPasswordToken")
	}
	return accessToken, nil
}

func (a *authService) ResetPassword(ctx context.Context, user model.User, d dto.ResetPasswordDTO) error {
	if err := a.v.Struct(d); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}

	passwordHash, err := argon2id.CreateHash(d.Password, argon2id.DefaultParams)
	if err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	user.PasswordHash = passwordHash
	if err := a.userRepo.UpdateUser(ctx, user); err != nil {
		return customErrors.WrapInternal(err, "ResetPassword")
	}

	a.log.Info("password updated", zap.String("user_id", user.ID.String()))
	return nil
}

func (a *authService) GoogleAuthCodeURL(state string) string {
	return a.google.AuthCodeURL(state)
}

func (a *authService) GoogleLogin(ctx context.Context, code string) (model.TokenPair, error) {
	profile, err := a.google.Authorize(ctx, code)
	if err != nil {
		return model.TokenPair{}, err
	}

	user, err := a.userRepo.GetUserByEmail(ctx, profile.Email)
	if errors.Is(err, customErrors.ErrNotFound) {
		payload, err := mapper.CreateUserPayload(profile)
		if err != nil {
			return model.TokenPair{}, err
		}
		if _, err := a.userRepo.CreateUser(ctx, payload); err != nil {
			return model.TokenPair{}, customErrors.WrapInternal(err, "GoogleLogin")
		}
		user = payload
		a.log.Info("user created from google profile", zap.String("user_id", user.ID.String()))
	} else if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "GoogleLogin")
	}

	return a.issuePair(ctx, user.ID.String())
}

// issuePair mints an access/refresh pair and records the refresh token
// as the single live one for the user.
func (a *authService) issuePair(ctx context.Context, userID string) (model.TokenPair, error) {
	accessToken, err := a.access.Create(userID)
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issue tokens")
	}
	refreshToken, err := a.refresh.Create()
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issue tokens")
	}
	if err := a.tokenStore.Assign(ctx, userID, refreshToken); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "issue tokens")
	}
	return model.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
