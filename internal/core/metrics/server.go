package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dep2p/go-stationbus/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Server 暴露 /metrics 的 HTTP 监听
type Server struct {
	addr   string
	server *http.Server
	ln     net.Listener
	done   chan struct{}
}

// NewServer 创建 HTTP 监听
func NewServer(addr string, c *Collector) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	return &Server{
		addr: addr,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start 开始监听
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("指标服务异常退出", "error", err)
		}
	}()

	logger.Info("指标服务已启动", "addr", ln.Addr().String())
	return nil
}

// Addr 返回实际监听地址（未启动时为配置地址）
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop 停止监听
func (s *Server) Stop(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	<-s.done
	return err
}
