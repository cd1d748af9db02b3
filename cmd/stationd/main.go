// Package main 提供 stationd 命令行入口
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/dep2p/go-stationbus"
	"github.com/dep2p/go-stationbus/internal/app"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
)

var logger = log.Logger("stationd")

// 版本信息（构建时通过 -ldflags 注入）
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//   命令行参数：运行时覆盖（「这次运行」想怎么跑）
//   JSON 配置文件：信号表、容量、超时等持久配置
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile = flag.String("config", "", "配置文件路径（JSON）")
	role       = flag.String("role", "", "运行角色 (acquisition/consumer/all)")
	prefix     = flag.String("prefix", "", "通道名前缀")
	shmDir     = flag.String("shm-dir", "", "共享内存段目录（默认 /dev/shm）")
	dataDir    = flag.String("data-dir", "", "信号存储目录")
	noStore    = flag.Bool("no-store", false, "禁用信号存储，直接使用配置文件中的信号")
	autoStart  = flag.Bool("auto-start", true, "启动后立即开始采样")

	metricsAddr = flag.String("metrics", "", "Prometheus 指标监听地址（如 :9464）")

	logFile  = flag.String("log", "", "日志文件路径")
	logLevel = flag.String("log-level", "", "日志级别 (debug/info/warn/error)")

	watch   = flag.Duration("watch", 0, "消费侧：按间隔打印各信号末值（0 = 不打印）")
	call    = flag.String("call", "", "消费侧：发送一条命令后退出（如 station/status）")
	payload = flag.String("payload", "", "与 -call 一起使用的 JSON 负载")
	timeout = flag.Duration("timeout", 5*time.Second, "与 -call 一起使用的超时")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Printf("stationd %s (%s)\n", Version, GitCommit)
		return nil
	}

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	st, err := stationbus.New(stationbus.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("启动 stationd", "version", Version, "role", cfg.Role, "prefix", cfg.Channels.Prefix)
	if err := st.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	if *call != "" {
		return runCall(ctx, st)
	}

	if *watch > 0 && st.Receiver() != nil {
		go watchLoop(ctx, st, *watch)
	}

	fmt.Println("stationd 已启动，按 Ctrl+C 退出")
	if sig := app.WaitForSignal(ctx); sig != nil {
		fmt.Printf("\n收到信号 %v，正在退出...\n", sig)
	}
	return st.Stop(context.Background())
}

// runCall 发送一条命令并打印响应
func runCall(ctx context.Context, st *stationbus.Station) error {
	client := st.Client()
	if client == nil {
		return fmt.Errorf("-call 需要 consumer 或 all 角色")
	}

	callCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	resp, err := client.Call(callCtx, *call, []byte(*payload))
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return fmt.Errorf("%s: %w", *call, err)
	}

	var pretty any
	if json.Unmarshal(resp.Payload, &pretty) == nil {
		out, _ := json.MarshalIndent(pretty, "", "  ")
		fmt.Println(string(out))
	} else if len(resp.Payload) > 0 {
		fmt.Println(string(resp.Payload))
	}
	fmt.Fprintf(os.Stderr, "(%d ms)\n", resp.ProcessingTimeMs)
	return nil
}

// watchLoop 按间隔打印末值缓存
func watchLoop(ctx context.Context, st *stationbus.Station, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		rx := st.Receiver()
		values := rx.LastValues()
		ids := make([]int64, 0, len(values))
		for id := range values {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		fmt.Printf("[%s] %s lost=%d\n", time.Now().Format("15:04:05"), rx.Connectivity(), rx.LossCount())
		for _, id := range ids {
			v := values[id]
			fmt.Printf("  #%-4d %12.4f  %-9s seq=%d\n", id, v.Value, v.Quality, v.Sequence)
		}
	}
}
