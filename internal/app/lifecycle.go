package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// RunUntilSignal 启动运行时，阻塞到收到 SIGINT/SIGTERM 或 ctx 结束后优雅停止
func RunUntilSignal(ctx context.Context, b *Bootstrap) error {
	if _, err := b.Start(ctx); err != nil {
		return err
	}

	sig := WaitForSignal(ctx)
	if sig != nil {
		logger.Info("收到信号，正在退出", "signal", sig.String())
	}
	return b.Stop(context.Background())
}

// WaitForSignal 等待退出信号；ctx 先结束时返回 nil
func WaitForSignal(ctx context.Context) os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		return sig
	case <-ctx.Done():
		return nil
	}
}
