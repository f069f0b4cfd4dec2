package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ecstudy/shopctl/internal/api"
	"github.com/ecstudy/shopctl/internal/errs"
	"github.com/ecstudy/shopctl/internal/model"
	"github.com/ecstudy/shopctl/internal/session"
)

// Landing surfaces after a successful login.
const (
	SurfaceStorefront = "/"
	SurfaceAdmin      = "/admin"
)

// RegisterInput are the new-account fields posted to the register endpoint.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthService drives the auth flows and the session store writes that
// follow them. Server failure messages pass through verbatim.
type AuthService struct {
	api      Doer
	sessions *session.Store
	log      *zap.Logger
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(client Doer, sessions *session.Store, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{api: client, sessions: sessions, log: log}
}

// Login posts credentials and stores the resulting session in the chosen
// tier. The previous session, if any, is cleared first so tiers never
// disagree after a tier switch.
func (s *AuthService) Login(ctx context.Context, email, password string, remember bool) (*model.AuthResponse, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: empty email/password", errs.ErrValidation)
	}
	var out model.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := s.api.Post(ctx, api.EPLogin, body, &out); err != nil {
		return nil, err
	}
	s.sessions.ClearAuth()
	if err := s.sessions.StoreAuth(out.Token, &out.User, remember); err != nil {
		return nil, err
	}
	s.log.Info("logged in",
		zap.String("user", out.User.Username),
		zap.Bool("remember", remember),
	)
	return &out, nil
}

// Register posts the new-account fields. The server returns a token on
// success, so the session is always stored, same as login.
func (s *AuthService) Register(ctx context.Context, in RegisterInput, remember bool) (*model.AuthResponse, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", errs.ErrValidation)
	}
	var out model.AuthResponse
	if err := s.api.Post(ctx, api.EPRegister, in, &out); err != nil {
		return nil, err
	}
	if out.Token != "" {
		s.sessions.ClearAuth()
		if err := s.sessions.StoreAuth(out.Token, &out.User, remember); err != nil {
			return nil, err
		}
	}
	s.log.Info("registered", zap.String("user", out.User.Username))
	return &out, nil
}

// Logout notifies the server best-effort, then clears local state
// unconditionally.
func (s *AuthService) Logout(ctx context.Context) {
	if err := s.api.Post(ctx, api.EPLogout, nil, nil); err != nil {
		s.log.Debug("logout notification failed", zap.Error(err))
	}
	s.sessions.ClearAuth()
}

// ForgotPassword requests a reset mail. Fire-and-report; no session writes.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: empty email", errs.ErrValidation)
	}
	return s.api.Post(ctx, api.EPForgotPassword, map[string]string{"email": email}, nil)
}

// ResetPassword redeems a reset token. Fire-and-report; no session writes.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return fmt.Errorf("%w: empty token/password", errs.ErrValidation)
	}
	body := map[string]string{"token": token, "password": newPassword}
	return s.api.Post(ctx, api.EPResetPassword, body, nil)
}

// LandingSurface returns where the user lands after login, by role.
func LandingSurface(u *model.User) string {
	if u.IsAdmin() {
		return SurfaceAdmin
	}
	return SurfaceStorefront
}
