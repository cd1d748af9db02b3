package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/dep2p/go-stationbus/config"
)

// 环境变量（STATIONBUS_ 前缀）
const (
	envPrefix    = "STATIONBUS_"
	envRole      = "ROLE"
	envPrefixVar = "CHANNEL_PREFIX"
	envShmDir    = "SHM_DIR"
	envDataDir   = "DATA_DIR"
	envMetrics   = "METRICS_ADDR"
	envLogFile   = "LOG_FILE"
	envLogLevel  = "LOG_LEVEL"
	envAutoStart = "AUTO_START"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// buildConfig 构建配置
//
// 优先级（从高到低）：命令行参数 > 环境变量 > 配置文件 > 默认值
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)
	applyFlagOverrides(cfg)

	// 单次命令只需要消费侧组件
	if *call != "" && cfg.Role == config.RoleAll && !isFlagSet("role") {
		cfg.Role = config.RoleConsumer
	}

	if err := config.ValidateAll(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides 应用环境变量覆盖配置
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv(envPrefix + envRole); v != "" {
		cfg.Role = v
	}
	if v := os.Getenv(envPrefix + envPrefixVar); v != "" {
		cfg.Channels.Prefix = v
	}
	if v := os.Getenv(envPrefix + envShmDir); v != "" {
		cfg.Channels.Dir = v
	}
	if v := os.Getenv(envPrefix + envDataDir); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv(envPrefix + envMetrics); v != "" {
		cfg.Metrics.Enable = true
		cfg.Metrics.ListenAddr = v
	}
	if v := os.Getenv(envPrefix + envLogFile); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv(envPrefix + envLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(envPrefix + envAutoStart); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Acquisition.AutoStart = b
		}
	}
}

// applyFlagOverrides 应用显式设置的命令行参数
func applyFlagOverrides(cfg *config.Config) {
	if isFlagSet("role") {
		cfg.Role = *role
	}
	if isFlagSet("prefix") {
		cfg.Channels.Prefix = *prefix
	}
	if isFlagSet("shm-dir") {
		cfg.Channels.Dir = *shmDir
	}
	if isFlagSet("data-dir") {
		cfg.Storage.DataDir = *dataDir
	}
	if *noStore {
		cfg.Storage.Enable = false
	}
	if isFlagSet("auto-start") {
		cfg.Acquisition.AutoStart = *autoStart
	}
	if isFlagSet("metrics") {
		cfg.Metrics.Enable = true
		cfg.Metrics.ListenAddr = *metricsAddr
	}
	if isFlagSet("log") {
		cfg.Log.File = *logFile
	}
	if isFlagSet("log-level") {
		cfg.Log.Level = *logLevel
	}
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
