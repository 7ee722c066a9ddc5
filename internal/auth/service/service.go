package service

import (
	"context"

	"github.com/avrorin/auth-api/internal/auth/dto"
	"github.com/avrorin/auth-api/internal/auth/mapper"
	"github.com/avrorin/auth-api/internal/auth/model"
	"github.com/avrorin/auth-api/internal/auth/token"
	"github.com/avrorin/auth-api/internal/config"
	"github.com/avrorin/auth-api/internal/mail"
	"github.com/avrorin/auth-api/internal/repo"
	"github.com/google/uuid"
	validate "github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AuthService composes the token codecs and the refresh-token store
// into the use-case flows. All cross-request state lives in the
// external stores; the service itself only holds immutable wiring.
type AuthService interface {
	Login(ctx context.Context, d dto.LoginDTO) (model.TokenPair, error)
	Refresh(ctx context.Context, d dto.RefreshDTO) (model.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error

	// Validate resolves a bearer access token to its user. It backs the
	// auth middleware guard.
	Validate(ctx context.Context, accessToken string) (model.User, error)

	Register(ctx context.Context, d dto.RegisterDTO) (uuid.UUID, error)

	ForgotPassword(ctx context.Context, d dto.ForgotPasswordDTO) error
	// CheckResetPasswordToken verifies a reset token and mints a fresh
	// access token serving as the reset-session credential.
	CheckResetPasswordToken(ctx context.Context, resetToken string) (string, error)
	ResetPassword(ctx context.Context, user model.User, d dto.ResetPasswordDTO) error

	GoogleAuthCodeURL(state string) string
	GoogleLogin(ctx context.Context, code string) (model.TokenPair, error)
}

// GoogleAuthenticator is the slice of the social-login unit the service
// needs; the http transport uses AuthCodeURL through the service too.
type GoogleAuthenticator interface {
	AuthCodeURL(state string) string
	Authorize(ctx context.Context, code string) (mapper.GoogleProfile, error)
}

func NewAuthService(
	userRepo repo.UserRepo,
	tokenStore repo.RefreshTokenStore,
	access *token.AccessCodec,
	refresh *token.RefreshCodec,
	reset *token.ResetCodec,
	sender mail.Sender,
	google GoogleAuthenticator,
	cfg *config.Config,
	v *validate.Validate,
	log *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokenStore: tokenStore,
		access:     access,
		refresh:    refresh,
		reset:      reset,
		sender:     sender,
		google:     google,
		cfg:        cfg,
		v:          v,
		log:        log,
	}
}
