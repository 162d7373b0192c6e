// Package cache implementa o cache-aside em Redis usado pelo dashboard
package cache

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/vfg2006/shop-ops-api/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const scanBatchSize = 100

type Cache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisClient(cfg config.Cache) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func New(client *redis.Client, prefix string, ttl time.Duration) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get busca o valor e o desserializa em dest. Retorna false quando a chave não existe.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("erro ao ler cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("erro ao desserializar cache: %w", err)
	}

	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("erro ao serializar cache: %w", err)
	}

	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("erro ao gravar cache: %w", err)
	}

	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("erro ao remover cache: %w", err)
	}
	return nil
}

// DeletePattern remove todas as chaves que casam com o padrão, usando SCAN
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	var cursor uint64

	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, c.prefix+pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("erro ao varrer cache: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("erro ao remover cache: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			return nil
		}
	}
}

// Generation retorna o contador de versão da chave, ou 0 quando ainda não existe
func (c *Cache) Generation(ctx context.Context, key string) (int64, error) {
	generation, err := c.client.Get(ctx, c.prefix+key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("erro ao ler versão do cache: %w", err)
	}
	return generation, nil
}

// BumpGeneration incrementa atomicamente o contador de versão da chave.
// O contador não expira, para que uma versão nunca seja reutilizada.
func (c *Cache) BumpGeneration(ctx context.Context, key string) (int64, error) {
	generation, err := c.client.Incr(ctx, c.prefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("erro ao incrementar versão do cache: %w", err)
	}
	return generation, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
