package redis

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/redis/converter"
	"github.com/DRSN-tech/pocopan-pos/pkg/clients"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// CacheRepo кэширует товары каталога. Ошибки Redis не ломают поиск товара:
// они логируются, а вызывающий идёт в базу.
type CacheRepo struct {
	client *clients.RedisClient
	conv   converter.ProductConverter
	ttl    time.Duration
	logger logger.Logger
}

func NewCacheRepo(client *clients.RedisClient, conv converter.ProductConverter, ttl time.Duration, logger logger.Logger) *CacheRepo {
	return &CacheRepo{
		client: client,
		conv:   conv,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CacheRepo) GetProduct(ctx context.Context, nameKey string) (*domain.Product, bool, error) {
	key := productKey(nameKey)

	val, err := c.client.Client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, r.Nil) {
			return nil, false, nil
		}
		c.logger.Warnf("Redis GET failed: %v", e.Wrap(whereami.WhereAmI(), err))
		return nil, false, nil
	}

	data, err := redisValueToBytes(val, key)
	if err != nil || data == nil {
		return nil, false, nil
	}

	model, err := unmarshal[converter.ProductRedisModel](data)
	if err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(key)
		return nil, false, nil
	}

	if domain.NameKey(model.Name) != domain.NameKey(nameKey) {
		c.logger.Warnf("Cache name mismatch: key %s, product %s", key, model.Name)
		c.drop(key)
		return nil, false, nil
	}

	return c.conv.ToEntity(model), true, nil
}

func (c *CacheRepo) SetProduct(ctx context.Context, product *domain.Product) error {
	data, err := marshal(c.conv.ToRedisModel(product))
	if err != nil {
		c.logger.Warnf("Failed to marshal product for caching (%s): %v", product.Name, e.Wrap(whereami.WhereAmI(), err))
		return nil
	}

	if err := c.client.Client.Set(ctx, productKey(product.Name), data, c.ttl).Err(); err != nil {
		c.logger.Warnf("Redis SET failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}

	return nil
}

// DeleteProducts сбрасывает записи по именам. Вызывается после изменения каталога.
func (c *CacheRepo) DeleteProducts(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = productKey(name)
	}

	if err := c.client.Client.Del(ctx, keys...).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CacheRepo) drop(key string) {
	if err := c.client.Client.Del(context.Background(), key).Err(); err != nil {
		c.logger.Warnf("Redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}
