package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dep2p/go-stationbus/internal/core/storage/kv"
	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/types"
)

// SignalPrefix 信号配置键前缀
var SignalPrefix = []byte("sig/")

// SignalStore 基于 KV 存储的信号配置表
//
// 键为 ID 的 8 字节有序编码（符号位翻转后的大端序），
// 前缀扫描即按 ID 升序返回。
type SignalStore struct {
	kv *kv.Store
}

var _ pkgif.SignalStore = (*SignalStore)(nil)

// NewSignalStore 创建信号配置存储
func NewSignalStore(eng pkgif.Engine) *SignalStore {
	return &SignalStore{kv: kv.New(eng, SignalPrefix)}
}

// signalKey 把有符号 ID 编码为按字节序可比较的键
func signalKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id)^(1<<63))
	return key
}

// Save 保存信号配置（按 ID 覆盖）
func (s *SignalStore) Save(sig types.SignalConfig) error {
	if err := sig.Validate(); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidRequest, err)
	}
	if err := s.kv.PutJSON(signalKey(sig.ID), sig); err != nil {
		return fmt.Errorf("save signal %d: %w", sig.ID, err)
	}
	return nil
}

// Load 按 ID 读取
func (s *SignalStore) Load(id int64) (types.SignalConfig, error) {
	var sig types.SignalConfig
	if err := s.kv.GetJSON(signalKey(id), &sig); err != nil {
		if errors.Is(err, ErrNotFound) {
			return types.SignalConfig{}, fmt.Errorf("signal %d: %w", id, ErrNotFound)
		}
		return types.SignalConfig{}, err
	}
	return sig, nil
}

// List 列出全部信号（按 ID 升序）
func (s *SignalStore) List() ([]types.SignalConfig, error) {
	var out []types.SignalConfig
	err := kv.ScanJSON(s.kv, func(_ []byte, sig types.SignalConfig) bool {
		out = append(out, sig)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list signals: %w", err)
	}
	return out, nil
}

// Delete 删除信号配置
func (s *SignalStore) Delete(id int64) error {
	return s.kv.Delete(signalKey(id))
}
