package usecase

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/google/uuid"
)

// DefaultSessionTTL — время жизни сессии по умолчанию.
const DefaultSessionTTL = time.Hour

// AuthUseCase проверяет учётные записи из конфигурации и ведёт сессии.
type AuthUseCase struct {
	users    map[string]domain.User
	sessions SessionRepository
	ttl      time.Duration
	logger   logger.Logger
	now      func() time.Time
}

func NewAuthUC(users []domain.User, sessions SessionRepository, ttl time.Duration, logger logger.Logger) *AuthUseCase {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	byName := make(map[string]domain.User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}

	return &AuthUseCase{
		users:    byName,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

func (a *AuthUseCase) Login(ctx context.Context, req *LoginReq) (*domain.Session, error) {
	const op = "AuthUseCase.Login"

	user, ok := a.users[req.Username]
	if !ok || subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
		a.logger.Warnf("Login rejected. username: %s", req.Username)
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	terminal := user.Terminal
	if user.Role == domain.RoleAdmin {
		terminal = domain.AggregateTerminal
	}

	now := a.now()
	session := &domain.Session{
		Token:     uuid.NewString(),
		Username:  user.Username,
		Role:      user.Role,
		Terminal:  terminal,
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
	}

	if err := a.sessions.Create(ctx, session); err != nil {
		return nil, e.Wrap(op, err)
	}

	a.logger.Infof("User logged in. username: %s, role: %s, terminal: %s", user.Username, user.Role, terminal)

	return session, nil
}

// Authenticate возвращает сессию по токену. Истёкшая сессия удаляется.
func (a *AuthUseCase) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	const op = "AuthUseCase.Authenticate"

	if token == "" {
		return nil, e.Wrap(op, e.ErrUnauthorized)
	}

	session, found, err := a.sessions.Get(ctx, token)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if !found {
		return nil, e.Wrap(op, e.ErrUnauthorized)
	}

	if !a.now().Before(session.ExpiresAt) {
		if err := a.sessions.Delete(ctx, token); err != nil {
			a.logger.Warnf("Failed to delete expired session: %v", e.Wrap(op, err))
		}
		return nil, e.Wrap(op, e.ErrSessionExpired)
	}

	return session, nil
}

func (a *AuthUseCase) Logout(ctx context.Context, token string) error {
	const op = "AuthUseCase.Logout"

	if err := a.sessions.Delete(ctx, token); err != nil {
		return e.Wrap(op, err)
	}
	return nil
}
