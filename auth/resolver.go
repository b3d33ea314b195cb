package auth

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoCredential = errors.New("no credential")
	ErrInvalidToken = errors.New("invalid token")
)

// Cookie names checked when no Authorization header is present, in order.
var sessionCookieNames = []string{"better-auth.session_token", "session_token"}

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	ID     string         `json:"id"`
	Email  string         `json:"email"`
	Name   string         `json:"name"`
	Claims map[string]any `json:"claims,omitempty"`
}

// SessionStore looks up a session token against an external session backend.
// A miss (unknown or expired token) is reported as (nil, nil), not an error.
type SessionStore interface {
	GetSession(token string) (*Identity, error)
}

// Resolver turns a request credential into an Identity. The richer session
// backend is tried first; tokens it does not know are then verified locally
// as signed JWTs. Built once at startup.
type Resolver struct {
	Disabled bool
	Secret   string
	Sessions SessionStore
}

// RequireAuth rejects requests whose credential resolves to no identity.
// The resolved identity is stored in c.Locals("user") for handlers.
func (r *Resolver) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r.Disabled {
			return c.Next()
		}

		identity, err := r.Resolve(c)
		if err != nil {
			message := "Unauthorized"
			if errors.Is(err, ErrInvalidToken) {
				message = "Invalid token"
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": message,
			})
		}

		c.Locals("user", identity)
		return c.Next()
	}
}

// Resolve runs the fallback chain for a single request: extract the
// credential, ask the session store, then verify the token locally.
func (r *Resolver) Resolve(c *fiber.Ctx) (*Identity, error) {
	token := TokenFromRequest(c)
	if token == "" {
		return nil, ErrNoCredential
	}

	if r.Sessions != nil {
		identity, err := r.Sessions.GetSession(token)
		if err == nil && identity != nil {
			return identity, nil
		}
		// Lookup miss or store failure both fall through to local
		// verification; the caller cannot tell which path rejected.
	}

	return r.verifyToken(token)
}

// TokenFromRequest extracts the credential from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			return token
		}
	}

	cookies := parseCookieHeader(c.Get(fiber.HeaderCookie))
	for _, name := range sessionCookieNames {
		if token := cookies[name]; token != "" {
			return token
		}
	}
	return ""
}

func (r *Resolver) verifyToken(tokenStr string) (*Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(r.Secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	identity := &Identity{Claims: claims}
	if v, ok := claims["sub"].(string); ok {
		identity.ID = v
	}
	if v, ok := claims["email"].(string); ok {
		identity.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		identity.Name = v
	}
	return identity, nil
}

// parseCookieHeader splits a raw Cookie header into percent-decoded pairs.
// Pairs that fail to decode are kept raw rather than dropped.
func parseCookieHeader(header string) map[string]string {
	cookies := make(map[string]string)
	if header == "" {
		return cookies
	}

	for _, entry := range strings.Split(header, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		eq := strings.Index(entry, "=")
		if eq == -1 {
			continue
		}
		keyRaw := strings.TrimSpace(entry[:eq])
		valueRaw := strings.TrimSpace(entry[eq+1:])
		if keyRaw == "" {
			continue
		}

		key, keyErr := url.QueryUnescape(keyRaw)
		value, valueErr := url.QueryUnescape(valueRaw)
		if keyErr != nil || valueErr != nil {
			cookies[keyRaw] = valueRaw
			continue
		}
		cookies[key] = value
	}
	return cookies
}
