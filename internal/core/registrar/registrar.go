package registrar

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"go.uber.org/multierr"

	pkgif "github.com/dep2p/go-stationbus/pkg/interfaces"
	"github.com/dep2p/go-stationbus/pkg/lib/log"
)

var logger = log.Logger("core/registrar")

// Route 路由表条目
type Route struct {
	Route string
	Op    any
}

// Registrar 处理器注册器
type Registrar struct {
	serializer pkgif.Serializer
}

// New 创建注册器，serializer 为 nil 时使用 JSON
func New(serializer pkgif.Serializer) *Registrar {
	if serializer == nil {
		serializer = JSONSerializer{}
	}
	return &Registrar{serializer: serializer}
}

// Serializer 返回负载序列化器
func (r *Registrar) Serializer() pkgif.Serializer {
	return r.serializer
}

// Adapt 适配单个操作
func (r *Registrar) Adapt(op any) (pkgif.CommandHandler, error) {
	return Adapt(r.serializer, op)
}

// Register 适配并注册单个操作
func (r *Registrar) Register(router pkgif.CommandRouter, route string, op any) error {
	h, err := r.Adapt(op)
	if err != nil {
		return fmt.Errorf("route %q: %w", route, err)
	}
	return router.Register(route, h)
}

// RegisterAll 注册整张路由表
//
// 先适配所有条目，任何条目失败则一个都不注册，返回合并后的错误。
// 注册阶段出现重复路由时已注册的条目会被回滚。
func (r *Registrar) RegisterAll(router pkgif.CommandRouter, table []Route) error {
	handlers := make([]pkgif.CommandHandler, len(table))
	var errs error
	for i, entry := range table {
		h, err := r.Adapt(entry.Op)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("route %q: %w", entry.Route, err))
			continue
		}
		handlers[i] = h
	}
	if errs != nil {
		return errs
	}

	for i, entry := range table {
		if err := router.Register(entry.Route, handlers[i]); err != nil {
			for _, done := range table[:i] {
				router.Unregister(done.Route)
			}
			return fmt.Errorf("route %q: %w", entry.Route, err)
		}
	}
	logger.Debug("路由表已注册", "routes", len(table), "serializer", r.serializer.Name())
	return nil
}

// FromObject 从对象的导出方法构造路由表
//
// 路由名为 prefix + "/" + kebab(方法名)，例如 ("valve", OpenValve) 得到 "valve/open-valve"。
// methods 为空时取对象全部导出方法。
func FromObject(prefix string, obj any, methods ...string) ([]Route, error) {
	v := reflect.ValueOf(obj)
	if !v.IsValid() {
		return nil, fmt.Errorf("%w: nil object", ErrUnsupportedShape)
	}
	t := v.Type()

	if len(methods) == 0 {
		for i := 0; i < t.NumMethod(); i++ {
			methods = append(methods, t.Method(i).Name)
		}
	}

	table := make([]Route, 0, len(methods))
	for _, name := range methods {
		m := v.MethodByName(name)
		if !m.IsValid() {
			return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchMethod, t, name)
		}
		route := kebab(name)
		if prefix != "" {
			route = strings.TrimSuffix(prefix, "/") + "/" + route
		}
		table = append(table, Route{Route: route, Op: m.Interface()})
	}
	return table, nil
}

// kebab 把 OpenValve 转为 open-valve，连续大写视为一个词（GetID -> get-id）
func kebab(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('-')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
