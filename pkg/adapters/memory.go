package adapters

import (
	"fmt"

	"github.com/patrickmn/go-cache"
)

// MemoryKV はブラウザの localStorage に相当するプロセス内 KV です。
// 値は期限切れにならず、プロセス終了と共に消えます。
type MemoryKV struct {
	items *cache.Cache
}

// NewMemoryKV は空の MemoryKV を作成します。
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryKV) Get(key string) (string, bool, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("キー %q の値が文字列ではありません: %T", key, v)
	}
	return s, true, nil
}

func (m *MemoryKV) Set(key, value string) error {
	m.items.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	m.items.Delete(key)
	return nil
}
