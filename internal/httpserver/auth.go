package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/general_store/internal/service"
	"github.com/Skotchmaster/general_store/internal/transport"
	"github.com/Skotchmaster/general_store/pkg/cookies"
	"github.com/Skotchmaster/general_store/pkg/logging"
	authmw "github.com/Skotchmaster/general_store/pkg/middleware/auth"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	CookieSecure bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register_error", err)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{"user": user})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	c.SetCookie(cookies.Create(cookies.SessionCookie, res.Token, "/", res.ExpiresAt, h.CookieSecure))
	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, transport.LoginResponse{User: *res.User, ExpiresAt: res.ExpiresAt})
}

// LogOut always clears the cookie; a missing or stale session is not an error.
func (h *AuthHTTP) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(cookies.SessionCookie); err == nil {
		if err := h.Svc.Logout(ctx, ck.Value); err != nil {
			c.SetCookie(cookies.Delete(cookies.SessionCookie, "/", h.CookieSecure))
			return fail(l, "logout_failed", err)
		}
	}

	c.SetCookie(cookies.Delete(cookies.SessionCookie, "/", h.CookieSecure))
	l.Info("logout_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	p, ok := authmw.PrincipalFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	user, err := h.Svc.GetUser(ctx, p.UserID)
	if err != nil {
		return fail(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// SessionResolver adapts AuthService to the session middleware.
type SessionResolver struct {
	Svc *service.AuthService
}

func (r SessionResolver) Resolve(ctx context.Context, token string) (*authmw.Principal, error) {
	u, err := r.Svc.ResolveCurrentUser(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			return nil, authmw.ErrNoSession
		}
		return nil, err
	}
	return &authmw.Principal{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}
