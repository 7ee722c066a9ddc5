package token

import (
	"errors"
	"time"

	customErrors "github.com/avrorin/auth-api/internal/auth/errors"
	"github.com/avrorin/auth-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the signed payload shared by access and refresh tokens.
// Access tokens carry the subject in Rid; refresh tokens omit it, the
// subject of a refresh token is recovered from the store, never from
// the token itself.
type Claims struct {
	Rid string `json:"rid,omitempty"`
	jwt.RegisteredClaims
}

// AccessCodec signs and verifies access tokens.
type AccessCodec struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	ttl    time.Duration
}

func NewAccessCodec(cfg *config.Config) *AccessCodec {
	return &AccessCodec{
		secret: []byte(cfg.SecretKey),
		method: signingMethod(cfg.JWTAlgorithm),
		issuer: cfg.Issuer(),
		ttl:    cfg.AccessTokenTTL,
	}
}

// Create issues an access token for userID.
func (c *AccessCodec) Create(userID string) (string, error) {
	if userID == "" {
		return "", customErrors.ErrMissingSubject
	}
	now := time.Now()
	claims := Claims{
		Rid: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", customErrors.WrapInternal(err, "sign access token")
	}
	return signed, nil
}

// Decode verifies signature and expiry and returns the claims.
func (c *AccessCodec) Decode(raw string) (Claims, error) {
	return decode(raw, c.secret, c.method)
}

// RefreshCodec signs and verifies refresh tokens. A refresh token has
// no subject claim; the per-token jti keeps every issued value unique
// so it can serve as a store key.
type RefreshCodec struct {
	secret []byte
	method jwt.SigningMethod
	issuer string
	ttl    time.Duration
}

func NewRefreshCodec(cfg *config.Config) *RefreshCodec {
	return &RefreshCodec{
		secret: []byte(cfg.SecretKey),
		method: signingMethod(cfg.JWTAlgorithm),
		issuer: cfg.Issuer(),
		ttl:    cfg.RefreshTokenTTL,
	}
}

func (c *RefreshCodec) Create() (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", customErrors.WrapInternal(err, "sign refresh token")
	}
	return signed, nil
}

func (c *RefreshCodec) Decode(raw string) (Claims, error) {
	return decode(raw, c.secret, c.method)
}

func decode(raw string, secret []byte, method jwt.SigningMethod) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != method.Alg() {
			return nil, customErrors.ErrTokenMalformed
		}
		return secret, nil
	}, jwt.WithIssuedAt())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, customErrors.ErrTokenExpired
		}
		return Claims{}, customErrors.ErrTokenMalformed
	}
	if !parsed.Valid {
		return Claims{}, customErrors.ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return Claims{}, customErrors.ErrTokenMalformed
	}
	return *claims, nil
}

func signingMethod(alg string) jwt.SigningMethod {
	if m := jwt.GetSigningMethod(alg); m != nil {
		return m
	}
	return jwt.SigningMethodHS256
}
