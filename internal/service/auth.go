package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/general_store/internal/events"
	"github.com/Skotchmaster/general_store/internal/models"
	"github.com/Skotchmaster/general_store/internal/repo"
	"github.com/Skotchmaster/general_store/internal/transport"
	pkg_hash "github.com/Skotchmaster/general_store/pkg/hash"
	"github.com/Skotchmaster/general_store/pkg/logging"
	"github.com/Skotchmaster/general_store/pkg/tokens"
)

const (
	sessionTokenBytes = 32
	DefaultSessionTTL = 30 * 24 * time.Hour
)

type AuthService struct {
	Repo       *repo.GormRepo
	Events     events.Publisher
	SessionTTL time.Duration
	Now        func() time.Time
}

func NewAuthService(r *repo.GormRepo, pub events.Publisher, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &AuthService{Repo: r, Events: pub, SessionTTL: ttl, Now: time.Now}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a customer account together with its Bronze loyalty row.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		l.Info("register_rejected", "status", 400, "reason", err.Error())
		return nil, err
	}

	user, err := s.createUser(ctx, req, models.RoleUser)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			l.Info("register_rejected", "status", 409, "reason", "email taken")
		} else {
			l.Error("register_error", "status", 500, "error", err)
		}
		return nil, err
	}

	if err := s.Events.Publish(ctx, events.New(events.UserRegistered, user.ID.String(), map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})); err != nil {
		l.Warn("event_publish_failed", "event", events.UserRegistered, "error", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	return user, nil
}

// CreateAdmin is the operator path for seeding back-office accounts.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	req := transport.RegisterRequest{Name: strings.TrimSpace(name), Email: normalizeEmail(email), Password: password}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return s.createUser(ctx, req, models.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, req transport.RegisterRequest, role string) (*models.User, error) {
	taken, err := s.Repo.EmailTaken(ctx, req.Email)
	if err != nil {
		return nil, repoErr(err, "user")
	}
	if taken {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	pwHash, err := pkg_hash.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %w", ErrInternal, err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		City:         strings.TrimSpace(req.City),
		Role:         role,
		IsActive:     true,
	}

	err = s.Repo.Tx(ctx, func(tx *repo.GormRepo) error {
		if err := tx.CreateUser(ctx, user); err != nil {
			return err
		}
		loyalty := models.NewLoyalty(user.ID)
		return tx.CreateLoyalty(ctx, &loyalty)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, repoErr(err, "user")
	}
	return user, nil
}

// Login verifies credentials and opens a server-side session. There is no
// lockout: every failed attempt returns ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*LoginResult, error) {
	email := normalizeEmail(req.Email)
	l := logging.FromContext(ctx).With("svc", "auth.login", "email", email)

	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.Repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Info("login_failed", "status", 401, "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_error", "status", 500, "error", err)
		return nil, repoErr(err, "user")
	}
	if !user.IsActive || !pkg_hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Info("login_failed", "status", 401, "reason", "bad password or inactive")
		return nil, ErrInvalidCredentials
	}

	token, err := tokens.NewOpaque(sessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: session token: %w", ErrInternal, err)
	}
	exp := s.Now().Add(s.SessionTTL).UTC()
	sess := &models.Session{
		UserID:    user.ID,
		TokenHash: tokens.Sha256Hex(token),
		ExpiresAt: exp,
	}
	if err := s.Repo.CreateSession(ctx, sess); err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return nil, repoErr(err, "session")
	}

	l.Info("login_succeeded", "user_id", user.ID)
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) ResolveCurrentUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	sess, err := s.Repo.GetSessionByHash(ctx, tokens.Sha256Hex(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, repoErr(err, "session")
	}
	if !s.Now().Before(sess.ExpiresAt) {
		return nil, ErrUnauthenticated
	}

	user, err := s.Repo.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, repoErr(err, "user")
	}
	if !user.IsActive {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// Logout is idempotent: unknown or empty tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	n, err := s.Repo.DeleteSessionByHash(ctx, tokens.Sha256Hex(token))
	if err != nil {
		return repoErr(err, "session")
	}
	logging.FromContext(ctx).With("svc", "auth.logout").Info("logout", "sessions_deleted", n)
	return nil
}

func (s *AuthService) PruneExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.Repo.DeleteExpiredSessions(ctx, now)
	if err != nil {
		return 0, repoErr(err, "session")
	}
	return n, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, repoErr(err, "user")
	}
	return u, nil
}
