package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 3 * time.Second

// RedisKV はサーバーホスト型の H5 デプロイ向けに Redis を使う KV です。
// 呼び出し側からは同期的に見えるよう、各操作を固定タイムアウトで実行します。
type RedisKV struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisKV は client を使う RedisKV を作成します。全キーに prefix を付与します。
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{
		client:  client,
		prefix:  prefix,
		timeout: defaultRedisTimeout,
	}
}

func (r *RedisKV) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisKV) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisKV) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Close は内部の Redis クライアントを閉じます。
func (r *RedisKV) Close() error {
	return r.client.Close()
}
