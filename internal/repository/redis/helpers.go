package redis

import (
	"encoding/json"
	"fmt"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
)

const (
	productKeyPrefix = "product:"
	cartKeyPrefix    = "cart:"
	sessionKeyPrefix = "session:"
)

// productKey строится по ключу имени, поэтому "Widget" и "widget" попадают в одну запись.
func productKey(name string) string {
	return productKeyPrefix + domain.NameKey(name)
}

func cartKey(owner string) string {
	return cartKeyPrefix + owner
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func unmarshal[T any](data []byte) (*T, error) {
	var model T
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, err
	}

	return &model, nil
}

// redisValueToBytes конвертирует значение из Redis в []byte. nil — промах.
func redisValueToBytes(val any, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
