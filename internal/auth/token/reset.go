package token

import (
	"crypto/sha256"
	"time"

	customErrors "github.com/avrorin/auth-api/internal/auth/errors"
	"github.com/avrorin/auth-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// ResetCodec issues the time-limited password-reset tokens. It is a
// separate signing path from the access/refresh codecs: the key is
// derived from the configured secret, so a reset token never verifies
// on the access path and vice versa.
type ResetCodec struct {
	secret []byte
	ttl    time.Duration
}

// ResetClaims is the reset-token payload: just the subject id plus the
// temporal claims. Validity is fully self-contained, no store entry.
type ResetClaims struct {
	Rid string `json:"rid"`
	jwt.RegisteredClaims
}

func NewResetCodec(cfg *config.Config) *ResetCodec {
	return &ResetCodec{
		secret: deriveResetKey(cfg.SecretKey),
		ttl:    cfg.ResetTokenTTL,
	}
}

func (c *ResetCodec) Create(userID string) (string, error) {
	if userID == "" {
		return "", customErrors.ErrMissingSubject
	}
	now := time.Now()
	claims := ResetClaims{
		Rid: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", customErrors.WrapInternal(err, "sign reset token")
	}
	return signed, nil
}

// Decode verifies a reset token and returns the subject id. Every
// failure mode comes back as the same error so the response can not be
// used as an expiry-vs-tampering oracle.
func (c *ResetCodec) Decode(raw string) (string, error) {
	parsed, err := jwt.ParseWithClaims(raw, &ResetClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrResetTokenInvalid
		}
		return c.secret, nil
	}, jwt.WithIssuedAt())
	if err != nil || !parsed.Valid {
		return "", customErrors.ErrResetTokenInvalid
	}
	claims, ok := parsed.Claims.(*ResetClaims)
	if !ok || claims.Rid == "" {
		return "", customErrors.ErrResetTokenInvalid
	}
	return claims.Rid, nil
}

func deriveResetKey(secret string) []byte {
	sum := sha256.Sum256([]byte(secret + ":reset-password"))
	return sum[:]
}
