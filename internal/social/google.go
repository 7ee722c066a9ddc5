package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	customErrors "github.com/avrorin/auth-api/internal/auth/errors"
	"github.com/avrorin/auth-api/internal/auth/mapper"
	"github.com/avrorin/auth-api/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleLogin wraps the OAuth2 code flow for the Google identity
// federation: redirect URL generation, code exchange and profile fetch.
type GoogleLogin struct {
	oauth *oauth2.Config
}

func NewGoogleLogin(cfg *config.Config) *GoogleLogin {
	return &GoogleLogin{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (g *GoogleLogin) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Authorize exchanges the authorization code and fetches the userinfo
// profile of the freshly authorized account.
func (g *GoogleLogin) Authorize(ctx context.Context, code string) (mapper.GoogleProfile, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return mapper.GoogleProfile{}, customErrors.NewInvalidArgument("authorization code exchange failed")
	}

	resp, err := g.oauth.Client(ctx, tok).Get(userInfoURL)
	if err != nil {
		return mapper.GoogleProfile{}, customErrors.WrapInternal(err, "fetch google userinfo")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mapper.GoogleProfile{}, customErrors.WrapInternal(
			fmt.Errorf("unexpected status %s", resp.Status), "fetch google userinfo")
	}

	var profile mapper.GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return mapper.GoogleProfile{}, customErrors.WrapInternal(err, "decode google userinfo")
	}
	return profile, nil
}
