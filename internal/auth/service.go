package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/identity"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/metrics"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/notification"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
var ErrInvalidCredentials = identity.ErrInvalidCredentials

// Session is the result of a successful register or login.
type Session struct {
	User        identity.User
	AccessToken string
	ExpiresAt   time.Time
}

// Service ties credential checks to token issuance.
type Service struct {
	ids      *identity.Service
	tokens   *Issuer
	notifier notification.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService builds the auth service. notifier and m may be nil.
func NewService(ids *identity.Service, tokens *Issuer, notifier notification.Notifier, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{ids: ids, tokens: tokens, notifier: notifier, metrics: m, logger: logger}
}

// Register creates the account and signs the caller in.
func (s *Service) Register(ctx context.Context, reg identity.Registration) (Session, error) {
	user, err := s.ids.Register(ctx, reg)
	if err != nil {
		s.metrics.Registration(registrationResult(err))
		return Session{}, err
	}
	s.metrics.Registration(metrics.ResultSuccess)

	session, err := s.issue(user, "register")
	if err != nil {
		return Session{}, err
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID))
	if s.notifier != nil {
		msg := notification.Message{
			UserID:      user.ID,
			Kind:        notification.KindWelcome,
			Destination: user.Phone,
			Body:        fmt.Sprintf("Welcome to AI Rythu Mitra, %s!", user.Name),
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.Warn("welcome notification failed", slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}
	return session, nil
}

// Login checks email and password and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.ids.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.metrics.Login(metrics.ResultInvalid)
		} else {
			s.metrics.Login(metrics.ResultError)
		}
		return Session{}, err
	}
	s.metrics.Login(metrics.ResultSuccess)
	return s.issue(user, "login")
}

// CurrentUser resolves a bearer token to the stored user. It returns
// ErrInvalidToken for bad tokens and identity.ErrNotFound when the subject
// no longer exists.
func (s *Service) CurrentUser(ctx context.Context, token string) (identity.User, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return identity.User{}, err
	}
	return s.ids.FindByID(ctx, subject)
}

// Logout exists for client symmetry. Tokens are stateless, so the client
// discarding its token is the whole of logging out.
func (s *Service) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if subject, err := s.tokens.Verify(token); err == nil {
		s.logger.InfoContext(ctx, "user logged out", slog.String("user_id", subject))
	}
}

func (s *Service) issue(user identity.User, flow string) (Session, error) {
	token, exp, err := s.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	s.metrics.TokenIssued(flow)
	return Session{User: user, AccessToken: token, ExpiresAt: exp}, nil
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, identity.ErrDuplicateEmail):
		return metrics.ResultDuplicate
	case errors.Is(err, identity.ErrValidation):
		return metrics.ResultInvalid
	default:
		return metrics.ResultError
	}
}
