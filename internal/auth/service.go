package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/config"
	"ms-restaurant/internal/db"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
)

// EmployeeStore is the employee lookup the session layer needs.
type EmployeeStore interface {
	GetEmployeeByLogin(ctx context.Context, login string) (*models.Employee, error)
}

type Service struct {
	Config    config.AuthConfig
	Employees EmployeeStore
	Logger    *logger.Logger
	Now       func() time.Time
}

func NewService(cfg config.AuthConfig, employees EmployeeStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	return &Service{Config: cfg, Employees: employees, Logger: log, Now: time.Now}
}

// Login checks the super-admin credentials first, then employee logins,
// and returns a session token.
func (s *Service) Login(ctx context.Context, login, password string) (string, error) {
	cfg := s.Config
	if login == cfg.AdminLogin && VerifyAdminPassword(password, cfg.AdminPasswordSalt, cfg.AdminPasswordHash) {
		return s.issueSession(login)
	}

	employee, err := s.Employees.GetEmployeeByLogin(ctx, login)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return "", apperr.Internal(fmt.Errorf("employee lookup: %w", err))
	}
	if employee != nil && VerifyPassword(password, employee.PasswordSalt, employee.PasswordHash) {
		return s.issueSession(login)
	}

	s.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("Rejected admin login %q", login))
	return "", apperr.Unauthorized()
}

func (s *Service) issueSession(login string) (string, error) {
	if s.Config.SessionSecret == "" {
		return "", apperr.Internal(errors.New("ADMIN_SESSION_SECRET is not set"))
	}
	s.Logger.LogSecurity("LOGIN", fmt.Sprintf("Admin session issued for %q", login))
	return CreateSessionToken(login, s.Config.SessionSecret, s.Config.SessionTTL, s.Now()), nil
}

// SessionLogin returns the login carried by the request's session cookie.
func (s *Service) SessionLogin(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	return VerifySessionToken(cookie.Value, s.Config.SessionSecret, s.Now())
}

// IsSuperAdmin reports whether login is the distinguished admin login.
func (s *Service) IsSuperAdmin(login string) bool {
	return s.Config.AdminLogin != "" && login == s.Config.AdminLogin
}

// Permissions resolves the capability set of login. It returns db.ErrNotFound
// when login is neither the super-admin nor an employee.
func (s *Service) Permissions(ctx context.Context, login string) (Permissions, error) {
	if s.IsSuperAdmin(login) {
		return AllPermissions(), nil
	}
	employee, err := s.Employees.GetEmployeeByLogin(ctx, login)
	if err != nil {
		return Permissions{}, err
	}
	return EmployeePermissions(employee), nil
}

// HasPermission is false for unknown logins.
func (s *Service) HasPermission(ctx context.Context, login string, perm Permission) (bool, error) {
	if login == "" {
		return false, nil
	}
	perms, err := s.Permissions(ctx, login)
	if errors.Is(err, db.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return perms.Has(perm), nil
}

// IssueClientToken signs a bearer token for client.
func (s *Service) IssueClientToken(client *models.Client) (string, error) {
	token, err := CreateClientToken(client.ID, client.Phone, client.Name, s.Config.ClientJWTSecret, s.Config.ClientTokenTTL, s.Now())
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

// ClientFromRequest verifies the bearer token of r.
func (s *Service) ClientFromRequest(r *http.Request) (*ClientClaims, bool) {
	token := ExtractTokenFromRequest(r)
	if token == "" {
		return nil, false
	}
	claims, err := VerifyClientToken(token, s.Config.ClientJWTSecret, s.Now())
	if err != nil {
		return nil, false
	}
	return claims, true
}
