package engine

import (
	"os"
	"path/filepath"
	"time"
)

// Config 存储引擎配置
//
// 测试代码应使用 t.TempDir() 创建临时目录。
type Config struct {
	// Path 数据目录路径（必需）
	Path string

	// SyncWrites 每次写入同步到磁盘
	SyncWrites bool

	// ReadOnly 只读模式
	ReadOnly bool

	// Badger 特定选项
	Badger BadgerOptions
}

// BadgerOptions BadgerDB 特定选项
//
// 信号配置数据量很小，默认值按嵌入式小库收紧。
type BadgerOptions struct {
	// MemTableSize 内存表大小（字节）
	MemTableSize int64

	// ValueLogFileSize 值日志文件大小（字节）
	ValueLogFileSize int64

	// BlockCacheSize 块缓存大小（字节）
	BlockCacheSize int64

	// NumCompactors 压缩器数量（至少 2）
	NumCompactors int

	// ZSTDCompressionLevel ZSTD 压缩级别，0 表示禁用
	ZSTDCompressionLevel int

	// GCInterval 值日志 GC 间隔，0 禁用
	GCInterval time.Duration

	// GCDiscardRatio GC 丢弃比例
	GCDiscardRatio float64
}

// DefaultConfig 返回默认配置
func DefaultConfig(path string) *Config {
	return &Config{
		Path:   path,
		Badger: DefaultBadgerOptions(),
	}
}

// DefaultBadgerOptions 返回默认 BadgerDB 选项
func DefaultBadgerOptions() BadgerOptions {
	return BadgerOptions{
		MemTableSize:         8 << 20,  // 8MB
		ValueLogFileSize:     64 << 20, // 64MB
		BlockCacheSize:       16 << 20, // 16MB
		NumCompactors:        2,
		ZSTDCompressionLevel: 1,
		GCInterval:           10 * time.Minute,
		GCDiscardRatio:       0.5,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Path == "" {
		return ErrInvalidConfig
	}
	if c.Badger.MemTableSize < 1<<20 { // 最小 1MB
		return ErrInvalidConfig
	}
	if c.Badger.ValueLogFileSize < 1<<20 {
		return ErrInvalidConfig
	}
	if c.Badger.NumCompactors < 2 {
		c.Badger.NumCompactors = 2
	}
	if c.Badger.GCDiscardRatio <= 0 || c.Badger.GCDiscardRatio >= 1 {
		c.Badger.GCDiscardRatio = 0.5
	}
	return nil
}

// EnsureDir 确保数据目录存在
func (c *Config) EnsureDir() error {
	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	c.Path = absPath
	return os.MkdirAll(c.Path, 0755)
}
