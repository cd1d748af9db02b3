package router

import (
	"fmt"
	"slices"
	"sync"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
)

// HandlerRegistry 路由 → 处理器注册表
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]pkgif.CommandHandler
}

// NewHandlerRegistry 创建处理器注册表
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{
		handlers: make(map[string]pkgif.CommandHandler),
	}
}

// Register 注册处理器，重复路由返回 ErrDuplicateRoute
func (r *HandlerRegistry) Register(route string, handler pkgif.CommandHandler) error {
	if route == "" {
		return ErrEmptyRoute
	}
	if handler == nil {
		return fmt.Errorf("%w: %q", ErrNilHandler, route)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[route]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRoute, route)
	}
	r.handlers[route] = handler
	return nil
}

// Unregister 注销处理器（不存在时为空操作）
func (r *HandlerRegistry) Unregister(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, route)
}

// Get 获取处理器
func (r *HandlerRegistry) Get(route string) (pkgif.CommandHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, exists := r.handlers[route]
	return handler, exists
}

// List 列出所有已注册的路由（已排序）
func (r *HandlerRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]string, 0, len(r.handlers))
	for route := range r.handlers {
		routes = append(routes, route)
	}
	slices.Sort(routes)
	return routes
}

// Len 返回已注册路由数
func (r *HandlerRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
