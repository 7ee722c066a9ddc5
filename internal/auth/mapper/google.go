package mapper

import (
	"strings"
	"time"

	customErrors "github.com/avrorin/auth-api/internal/auth/errors"
	"github.com/avrorin/auth-api/internal/auth/model"
	"github.com/google/uuid"
)

// GoogleProfile mirrors the Google userinfo payload.
type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

// CreateUserPayload maps a Google profile to a local user record. Pure
// function, no side effects. The placeholder password hash is a random
// value that never matches any password, so the account is not
// password-login-capable until a reset.
func CreateUserPayload(p GoogleProfile) (model.User, error) {
	if p.Email == "" {
		return model.User{}, customErrors.NewInvalidArgument("google profile has no email")
	}

	username := strings.SplitN(p.Email, "@", 2)[0]
	if len(username) > 50 {
		username = username[:50]
	}

	return model.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        p.Email,
		PasswordHash: uuid.NewString(),
		// TODO: confirm the first/last name mapping with the product
		// owner; the upstream profile swaps family and given name here.
		FirstName:        p.FamilyName,
		LastName:         p.GivenName,
		RegistrationDate: time.Now(),
		IsActive:         true,
	}, nil
}
