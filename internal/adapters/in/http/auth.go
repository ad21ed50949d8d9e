package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"kitchen/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const identityKey = "kitchen.identity"

var (
	jwtSigningMethod = jwt.SigningMethodHS256

	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is the token issued to kitchen staff. Subject carries the worker id.
type Claims struct {
	RestaurantID kernel.UUID `json:"restaurant_id"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller of a request.
type Identity struct {
	WorkerID     kernel.UUID
	RestaurantID kernel.UUID
}

// IssueToken mints an HS256 token for a worker of a restaurant.
func IssueToken(secret []byte, identity Identity, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		RestaurantID: identity.RestaurantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.WorkerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwtSigningMethod, claims).SignedString(secret)
}

// ParseToken verifies the signature and expiry and extracts the identity.
func ParseToken(secret []byte, raw string) (Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwtSigningMethod.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return secret, nil
	})
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	workerID, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}
	if err = claims.RestaurantID.Validate(); err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}
	return Identity{WorkerID: workerID, RestaurantID: claims.RestaurantID}, nil
}

// Authenticate rejects requests without a valid token. Browsers cannot set headers
// on a WebSocket handshake, so a "token" query parameter is accepted as well.
func Authenticate(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				raw = c.QueryParam("token")
			}
			if raw == "" {
				return errorResponse(c, http.StatusUnauthorized, ErrMissingToken.Error())
			}

			identity, err := ParseToken(secret, raw)
			if err != nil {
				return errorResponse(c, http.StatusUnauthorized, ErrInvalidToken.Error())
			}
			c.Set(identityKey, identity)
			return next(c)
		}
	}
}

func identityFrom(c echo.Context) Identity {
	identity, _ := c.Get(identityKey).(Identity)
	return identity
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
