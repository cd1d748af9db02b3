package acquisition

import (
	"fmt"

	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/types"
)

// LoadSignals 启动时读取一次信号配置
//
// store 为 nil 时直接使用 fallback。存储为空时使用 fallback，
// seed 为 true 则同时把 fallback 写入存储。
func LoadSignals(store pkgif.SignalStore, fallback []types.SignalConfig, seed bool) ([]types.SignalConfig, error) {
	if store == nil {
		return fallback, nil
	}

	signals, err := store.List()
	if err != nil {
		return nil, fmt.Errorf("load signals: %w", err)
	}
	if len(signals) > 0 {
		logger.Info("从存储加载信号配置", "count", len(signals))
		return signals, nil
	}

	if !seed {
		logger.Info("存储中没有信号配置，使用配置文件中的信号", "count", len(fallback))
		return fallback, nil
	}

	var errs error
	for _, sig := range fallback {
		errs = multierr.Append(errs, store.Save(sig))
	}
	if errs != nil {
		return nil, fmt.Errorf("seed signals: %w", errs)
	}
	logger.Info("已用配置文件初始化信号存储", "count", len(fallback))
	return fallback, nil
}
