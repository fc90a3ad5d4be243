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

// CartRepo хранит корзину пользователя одной JSON-записью. Запись живёт столько же, сколько сессия.
type CartRepo struct {
	client *clients.RedisClient
	conv   converter.CartConverter
	ttl    time.Duration
}

func NewCartRepo(client *clients.RedisClient, conv converter.CartConverter, ttl time.Duration) *CartRepo {
	return &CartRepo{
		client: client,
		conv:   conv,
		ttl:    ttl,
	}
}

func (c *CartRepo) Get(ctx context.Context, owner string) (*domain.Cart, error) {
	cart, err := c.decode(owner, c.client.Client.Get(ctx, cartKey(owner)))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return cart, nil
}

// Take читает и удаляет корзину одной командой GETDEL.
func (c *CartRepo) Take(ctx context.Context, owner string) (*domain.Cart, error) {
	cart, err := c.decode(owner, c.client.Client.GetDel(ctx, cartKey(owner)))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return cart, nil
}

func (c *CartRepo) decode(owner string, cmd *r.StringCmd) (*domain.Cart, error) {
	data, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return domain.NewCart(owner), nil
		}
		return nil, err
	}

	model, err := unmarshal[converter.CartRedisModel](data)
	if err != nil {
		return nil, err
	}

	cart := c.conv.ToEntity(model)
	cart.Owner = owner
	return cart, nil
}

func (c *CartRepo) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := marshal(c.conv.ToRedisModel(cart))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, cartKey(cart.Owner), data, c.ttl).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CartRepo) Clear(ctx context.Context, owner string) error {
	if err := c.client.Client.Del(ctx, cartKey(owner)).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
