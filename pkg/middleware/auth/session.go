package authmw

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/general_store/pkg/cookies"
	"github.com/Skotchmaster/general_store/pkg/logging"
)

const principalKey = "principal"

// ErrNoSession is returned by a Resolver when the token does not map to a live session.
var ErrNoSession = errors.New("no session")

type Principal struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   string
}

func (p *Principal) IsAdmin() bool { return p != nil && p.Role == "admin" }

type Resolver interface {
	Resolve(ctx context.Context, token string) (*Principal, error)
}

type SessionMiddleware struct {
	Resolver     Resolver
	CookieName   string
	CookieSecure bool
}

func NewSessionMiddleware(r Resolver, secure bool) *SessionMiddleware {
	return &SessionMiddleware{
		Resolver:     r,
		CookieName:   cookies.SessionCookie,
		CookieSecure: secure,
	}
}

type checkFunc func(p *Principal) error

func (m *SessionMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, nil)
}

func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, func(p *Principal) error {
		if !p.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// OptionalAuth attaches the principal when a valid session cookie is present
// and lets the request through either way.
func (m *SessionMiddleware) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := m.token(c)
		if token == "" {
			return next(c)
		}
		p, err := m.Resolver.Resolve(c.Request().Context(), token)
		switch {
		case err == nil:
			c.Set(principalKey, p)
		case errors.Is(err, ErrNoSession):
			c.SetCookie(cookies.Delete(m.CookieName, "/", m.CookieSecure))
		default:
			logging.FromContext(c.Request().Context()).Warn("session_resolve_failed", "error", err)
		}
		return next(c)
	}
}

func (m *SessionMiddleware) require(next echo.HandlerFunc, check checkFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := m.token(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		p, err := m.Resolver.Resolve(c.Request().Context(), token)
		if err != nil {
			if errors.Is(err, ErrNoSession) {
				c.SetCookie(cookies.Delete(m.CookieName, "/", m.CookieSecure))
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			logging.FromContext(c.Request().Context()).Error("session_resolve_failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}

		if check != nil {
			if err := check(p); err != nil {
				return err
			}
		}

		c.Set(principalKey, p)
		return next(c)
	}
}

func (m *SessionMiddleware) token(c echo.Context) string {
	ck, err := c.Cookie(m.CookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}

func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok && p != nil
}
