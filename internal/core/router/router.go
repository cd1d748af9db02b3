package router

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
	"github.com/dep2p/go-stationbus/pkg/types"
)

var logger = log.Logger("core/router")

// Observer 路由指标观察者
type Observer interface {
	ObserveRoute(route string, status types.StatusCode, elapsed time.Duration)
}

// Option 路由器选项
type Option func(*Router)

// WithClock 注入时钟
func WithClock(c clock.Clock) Option {
	return func(r *Router) { r.clock = c }
}

// WithObserver 注入指标观察者
func WithObserver(o Observer) Option {
	return func(r *Router) { r.observer = o }
}

// Router 命令路由器
type Router struct {
	handlers *HandlerRegistry
	clock    clock.Clock
	observer Observer
}

var _ pkgif.CommandRouter = (*Router)(nil)

// New 创建路由器
func New(opts ...Option) *Router {
	r := &Router{
		handlers: NewHandlerRegistry(),
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register 注册路由
func (r *Router) Register(route string, handler pkgif.CommandHandler) error {
	if err := r.handlers.Register(route, handler); err != nil {
		return err
	}
	logger.Debug("路由已注册", "route", route)
	return nil
}

// MustRegister 注册路由，失败时 panic（仅用于启动期静态注册表）
func (r *Router) MustRegister(route string, handler pkgif.CommandHandler) {
	if err := r.Register(route, handler); err != nil {
		panic(err)
	}
}

// Unregister 注销路由
func (r *Router) Unregister(route string) {
	r.handlers.Unregister(route)
}

// Routes 返回已注册路由（已排序）
func (r *Router) Routes() []string {
	return r.handlers.List()
}

// Route 分发请求
//
// 永不返回 nil，永不 panic。
func (r *Router) Route(ctx context.Context, req *types.CommandRequest) *types.CommandResponse {
	start := r.clock.Now()

	var resp *types.CommandResponse
	switch {
	case req == nil:
		resp = types.NewErrorResponse("", types.StatusInvalidRequest, "nil request")
		req = &types.CommandRequest{}
	case req.Route == "":
		resp = types.NewErrorResponse(req.RequestID, types.StatusInvalidRequest, "empty route")
	default:
		handler, ok := r.handlers.Get(req.Route)
		if !ok {
			logger.Debug("路由未注册", "route", req.Route, "requestID", req.RequestID)
			resp = types.NewErrorResponse(req.RequestID, types.StatusHandlerNotFound,
				fmt.Sprintf("no handler registered for route %q", req.Route))
		} else {
			resp = r.invoke(ctx, handler, req)
		}
	}

	elapsed := r.clock.Since(start)
	resp.RequestID = req.RequestID
	resp.ProcessingTimeMs = types.ElapsedMs(elapsed)

	if r.observer != nil {
		r.observer.ObserveRoute(req.Route, resp.Status, elapsed)
	}
	return resp
}

type outcome struct {
	resp *types.CommandResponse
	err  error
}

// invoke 在独立协程中执行处理器，等待其完成或 ctx 结束
func (r *Router) invoke(ctx context.Context, handler pkgif.CommandHandler, req *types.CommandRequest) *types.CommandResponse {
	if err := ctx.Err(); err != nil {
		return timeoutResponse(req, err)
	}

	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("处理器 panic", "route", req.Route, "panic", p)
				done <- outcome{err: fmt.Errorf("%w: handler panic: %v", types.ErrInternal, p)}
			}
		}()
		resp, err := handler(ctx, req)
		done <- outcome{resp: resp, err: err}
	}()

	select {
	case out := <-done:
		return buildResponse(req, out)
	case <-ctx.Done():
		logger.Warn("处理器超时", "route", req.Route, "requestID", req.RequestID, "error", ctx.Err())
		return timeoutResponse(req, ctx.Err())
	}
}

func buildResponse(req *types.CommandRequest, out outcome) *types.CommandResponse {
	if out.err != nil {
		status := types.StatusFromError(out.err)
		if status == types.StatusInternalError && !errors.Is(out.err, types.ErrInternal) {
			logger.Warn("处理器返回错误", "route", req.Route, "error", out.err)
		}
		return types.NewErrorResponse(req.RequestID, status, out.err.Error())
	}
	if out.resp == nil {
		return &types.CommandResponse{Status: types.StatusSuccess}
	}
	return out.resp
}

func timeoutResponse(req *types.CommandRequest, cause error) *types.CommandResponse {
	return types.NewErrorResponse(req.RequestID, types.StatusTimeout,
		fmt.Sprintf("route %q: %v", req.Route, cause))
}
