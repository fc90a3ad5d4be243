package http

import (
	"context"
	"net/http"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

type sessionCtxKey struct{}

func withSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// sessionFrom возвращает сессию, положенную authMiddleware.
func sessionFrom(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*domain.Session)
	return s
}

// authMiddleware требует заголовок Authorization: Bearer <token>.
func authMiddleware(authUC usecase.AuthUC, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := authUC.Authenticate(r.Context(), bearerToken(r))
			if err != nil {
				if e.KindOf(err) != e.KindUnauthorized {
					log.Errorf(err, "authentication failed")
				}
				WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
		})
	}
}

func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s := sessionFrom(r.Context()); s == nil || !s.IsAdmin() {
			WriteError(w, e.ErrAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger пишет строку лога на каждый запрос.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Debugf("%s %s %d %s request_id=%s",
				r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}

// allowedTerminal решает, с каким терминалом работает запрос.
// Пустой запрошенный терминал означает терминал сессии.
func allowedTerminal(s *domain.Session, requested string) (domain.TerminalID, error) {
	if requested == "" {
		return s.Terminal, nil
	}

	terminal := domain.ParseTerminalID(requested)
	if !s.CanView(terminal) {
		return "", e.ErrTerminalForbidden
	}

	return terminal, nil
}
