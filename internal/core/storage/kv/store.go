package kv

import (
	"encoding/json"
	"fmt"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// Store 带前缀隔离的 KV 存储
type Store struct {
	engine pkgif.Engine
	prefix []byte
}

// New 创建新的 KVStore，所有操作自动添加 prefix
func New(eng pkgif.Engine, prefix []byte) *Store {
	return &Store{
		engine: eng,
		prefix: append([]byte(nil), prefix...),
	}
}

// Prefix 返回键前缀
func (s *Store) Prefix() []byte {
	return s.prefix
}

// prefixKey 为键添加前缀
func (s *Store) prefixKey(key []byte) []byte {
	if len(s.prefix) == 0 {
		return key
	}
	prefixed := make([]byte, len(s.prefix)+len(key))
	copy(prefixed, s.prefix)
	copy(prefixed[len(s.prefix):], key)
	return prefixed
}

// stripPrefix 从键中移除前缀
func (s *Store) stripPrefix(key []byte) []byte {
	if len(key) < len(s.prefix) {
		return key
	}
	return key[len(s.prefix):]
}

// Get 获取指定键的值
func (s *Store) Get(key []byte) ([]byte, error) {
	return s.engine.Get(s.prefixKey(key))
}

// Put 设置键值对
func (s *Store) Put(key, value []byte) error {
	return s.engine.Put(s.prefixKey(key), value)
}

// Delete 删除指定键
func (s *Store) Delete(key []byte) error {
	return s.engine.Delete(s.prefixKey(key))
}

// Has 检查键是否存在
func (s *Store) Has(key []byte) (bool, error) {
	return s.engine.Has(s.prefixKey(key))
}

// Scan 遍历本前缀下的键值对，传给 fn 的键已去掉前缀
func (s *Store) Scan(fn func(key, value []byte) bool) error {
	return s.engine.Scan(s.prefix, func(k, v []byte) bool {
		return fn(s.stripPrefix(k), v)
	})
}

// GetJSON 获取并反序列化 JSON 值
func (s *Store) GetJSON(key []byte, v any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %q: %w", s.prefixKey(key), err)
	}
	return nil
}

// PutJSON 序列化并存储 JSON 值
func (s *Store) PutJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(key, data)
}

// ScanJSON 遍历前缀下的 JSON 值，逐条解码为 T
func ScanJSON[T any](s *Store, fn func(key []byte, v T) bool) error {
	var decodeErr error
	err := s.Scan(func(k, data []byte) bool {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			decodeErr = fmt.Errorf("decode %q: %w", s.prefixKey(k), err)
			return false
		}
		return fn(k, v)
	})
	if err != nil {
		return err
	}
	return decodeErr
}
