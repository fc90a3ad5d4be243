package redis

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/redis/converter"
	"github.com/DRSN-tech/pocopan-pos/pkg/clients"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// SessionRepo хранит сессии с TTL до ExpiresAt, Redis удаляет истёкшие сам.
type SessionRepo struct {
	client *clients.RedisClient
	conv   converter.SessionConverter
}

func NewSessionRepo(client *clients.RedisClient, conv converter.SessionConverter) *SessionRepo {
	return &SessionRepo{
		client: client,
		conv:   conv,
	}
}

func (s *SessionRepo) Create(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrSessionExpired)
	}

	data, err := marshal(s.conv.ToRedisModel(session))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := s.client.Client.Set(ctx, sessionKey(session.Token), data, ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (s *SessionRepo) Get(ctx context.Context, token string) (*domain.Session, bool, error) {
	data, err := s.client.Client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, false, nil
		}
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := unmarshal[converter.SessionRedisModel](data)
	if err != nil {
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	return s.conv.ToEntity(model), true, nil
}

func (s *SessionRepo) Delete(ctx context.Context, token string) error {
	if err := s.client.Client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
