package registrar

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dep2p/go-stationbus/internal/core/router"
	"github.com/dep2p/go-stationbus/pkg/types"
)

type valveRequest struct {
	Valve int `json:"valve"`
}

type valveState struct {
	Valve int  `json:"valve"`
	Open  bool `json:"open"`
}

type valveBank struct {
	open map[int]bool
}

func newValveBank() *valveBank {
	return &valveBank{open: make(map[int]bool)}
}

func (b *valveBank) OpenValve(req valveRequest) valveState {
	b.open[req.Valve] = true
	return valveState{Valve: req.Valve, Open: true}
}

func (b *valveBank) GetID() int { return 7 }

func call(t *testing.T, r *router.Router, route string, payload []byte) *types.CommandResponse {
	t.Helper()
	return r.Route(context.Background(), &types.CommandRequest{RequestID: "req-1", Route: route, Payload: payload})
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

// TestRegistrar_Shapes 所有支持的形态都能注册并调用
func TestRegistrar_Shapes(t *testing.T) {
	r := router.New()
	var noArgCalled, ctxCalled bool

	table := []Route{
		{Route: "none", Op: func() { noArgCalled = true }},
		{Route: "ctx", Op: func(ctx context.Context) error {
			ctxCalled = ctx != nil
			return nil
		}},
		{Route: "value", Op: func() int { return 42 }},
		{Route: "payload", Op: func(req valveRequest) valveState {
			return valveState{Valve: req.Valve, Open: true}
		}},
		{Route: "pointer", Op: func(_ context.Context, req *valveRequest) (*valveState, error) {
			return &valveState{Valve: req.Valve * 2}, nil
		}},
		{Route: "async", Op: func(req valveRequest) <-chan valveState {
			ch := make(chan valveState, 1)
			go func() { ch <- valveState{Valve: req.Valve, Open: true} }()
			return ch
		}},
	}
	require.NoError(t, New(nil).RegisterAll(r, table))
	assert.Len(t, r.Routes(), len(table))

	resp := call(t, r, "none", nil)
	assert.True(t, resp.IsSuccess())
	assert.Empty(t, resp.Payload)
	assert.True(t, noArgCalled)

	resp = call(t, r, "ctx", nil)
	assert.True(t, resp.IsSuccess())
	assert.True(t, ctxCalled)

	resp = call(t, r, "value", nil)
	assert.Equal(t, "42", string(resp.Payload))

	resp = call(t, r, "payload", mustJSON(t, valveRequest{Valve: 3}))
	require.True(t, resp.IsSuccess())
	var st valveState
	require.NoError(t, json.Unmarshal(resp.Payload, &st))
	assert.Equal(t, valveState{Valve: 3, Open: true}, st)

	resp = call(t, r, "pointer", mustJSON(t, valveRequest{Valve: 4}))
	require.True(t, resp.IsSuccess())
	require.NoError(t, json.Unmarshal(resp.Payload, &st))
	assert.Equal(t, 8, st.Valve)

	resp = call(t, r, "async", mustJSON(t, valveRequest{Valve: 5}))
	require.True(t, resp.IsSuccess())
	require.NoError(t, json.Unmarshal(resp.Payload, &st))
	assert.Equal(t, valveState{Valve: 5, Open: true}, st)
}

func TestRegistrar_PayloadErrors(t *testing.T) {
	r := router.New()
	reg := New(JSONSerializer{})
	require.NoError(t, reg.Register(r, "valve/open", func(req valveRequest) valveState {
		return valveState{Valve: req.Valve}
	}))

	resp := call(t, r, "valve/open", nil)
	assert.Equal(t, types.StatusInvalidRequest, resp.Status)

	resp = call(t, r, "valve/open", []byte("{not json"))
	assert.Equal(t, types.StatusSerializationError, resp.Status)
}

func TestRegistrar_ErrorPropagation(t *testing.T) {
	r := router.New()
	reg := New(nil)
	require.NoError(t, reg.Register(r, "fault", func() error { return errors.New("actuator fault") }))
	require.NoError(t, reg.Register(r, "fault2", func() (int, error) { return 0, types.ErrInvalidRequest }))
	require.NoError(t, reg.Register(r, "nilptr", func() *valveState { return nil }))
	require.NoError(t, reg.Register(r, "closed", func() <-chan int {
		ch := make(chan int)
		close(ch)
		return ch
	}))

	resp := call(t, r, "fault", nil)
	assert.Equal(t, types.StatusInternalError, resp.Status)
	assert.Equal(t, "actuator fault", resp.ErrorMessage)

	resp = call(t, r, "fault2", nil)
	assert.Equal(t, types.StatusInvalidRequest, resp.Status)

	resp = call(t, r, "nilptr", nil)
	assert.True(t, resp.IsSuccess())
	assert.Empty(t, resp.Payload)

	resp = call(t, r, "closed", nil)
	assert.Equal(t, types.StatusInternalError, resp.Status)
}

// TestRegistrar_AsyncTimeout 异步结果迟迟不到时按 ctx 超时
func TestRegistrar_AsyncTimeout(t *testing.T) {
	r := router.New()
	require.NoError(t, New(nil).Register(r, "never", func() <-chan int { return make(chan int) }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	resp := r.Route(ctx, &types.CommandRequest{Route: "never"})
	assert.Equal(t, types.StatusTimeout, resp.Status)
}

func TestRegistrar_UnsupportedShapes(t *testing.T) {
	reg := New(nil)
	cases := map[string]any{
		"nil":          nil,
		"not a func":   42,
		"variadic":     func(...int) {},
		"three params": func(context.Context, int, int) {},
		"ctx second":   func(int, context.Context) {},
		"two ctx":      func(context.Context, context.Context) {},
		"bad second":   func() (int, int) { return 0, 0 },
		"three results": func() (int, int, error) {
			return 0, 0, nil
		},
		"error first": func() (error, error) { return nil, nil },
	}
	for name, op := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Adapt(op)
			assert.ErrorIs(t, err, ErrUnsupportedShape)
		})
	}
}

// TestRegistrar_AllOrNothing 任一条目失败时整张表都不注册
func TestRegistrar_AllOrNothing(t *testing.T) {
	r := router.New()
	err := New(nil).RegisterAll(r, []Route{
		{Route: "ok", Op: func() {}},
		{Route: "bad1", Op: 1},
		{Route: "bad2", Op: func(...int) {}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedShape)
	assert.Contains(t, err.Error(), "bad1")
	assert.Contains(t, err.Error(), "bad2")
	assert.Empty(t, r.Routes())

	require.NoError(t, r.Register("dup", func(context.Context, *types.CommandRequest) (*types.CommandResponse, error) {
		return nil, nil
	}))
	err = New(nil).RegisterAll(r, []Route{
		{Route: "first", Op: func() {}},
		{Route: "dup", Op: func() {}},
	})
	assert.ErrorIs(t, err, router.ErrDuplicateRoute)
	assert.Equal(t, []string{"dup"}, r.Routes())
}

func TestRegistrar_FromObject(t *testing.T) {
	bank := newValveBank()

	table, err := FromObject("valve", bank, "OpenValve", "GetID")
	require.NoError(t, err)
	require.Len(t, table, 2)
	assert.Equal(t, "valve/open-valve", table[0].Route)
	assert.Equal(t, "valve/get-id", table[1].Route)

	r := router.New()
	require.NoError(t, New(nil).RegisterAll(r, table))

	resp := call(t, r, "valve/open-valve", mustJSON(t, valveRequest{Valve: 2}))
	require.True(t, resp.IsSuccess())
	assert.True(t, bank.open[2])

	_, err = FromObject("valve", bank, "Missing")
	assert.ErrorIs(t, err, ErrNoSuchMethod)

	all, err := FromObject("", bank)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestKebab(t *testing.T) {
	cases := map[string]string{
		"Start":       "start",
		"OpenValve":   "open-valve",
		"GetID":       "get-id",
		"HTTPServer":  "http-server",
		"SetMode2":    "set-mode2",
		"ListSignals": "list-signals",
	}
	for in, want := range cases {
		assert.Equal(t, want, kebab(in), in)
	}
}

func TestRegistrar_Proto(t *testing.T) {
	s, err := NewSerializer("proto")
	require.NoError(t, err)
	reg := New(s)

	_, err = reg.Adapt(func(valveRequest) {})
	assert.ErrorIs(t, err, ErrUnsupportedShape)

	r := router.New()
	require.NoError(t, reg.Register(r, "signals/name", func(_ context.Context, id *wrapperspb.Int64Value) (*wrapperspb.StringValue, error) {
		return wrapperspb.String("inlet_pressure"), nil
	}))

	payload, err := proto.Marshal(wrapperspb.Int64(1))
	require.NoError(t, err)

	resp := call(t, r, "signals/name", payload)
	require.True(t, resp.IsSuccess())
	out := &wrapperspb.StringValue{}
	require.NoError(t, proto.Unmarshal(resp.Payload, out))
	assert.Equal(t, "inlet_pressure", out.GetValue())

	resp = call(t, r, "signals/name", []byte{0xff, 0xff, 0xff})
	assert.Equal(t, types.StatusSerializationError, resp.Status)
}

// TestRegistrar_ProtoZeroValue 零值消息编码为空负载，仍是合法请求
func TestRegistrar_ProtoZeroValue(t *testing.T) {
	reg := New(ProtoSerializer{})
	r := router.New()

	var got *wrapperspb.Int64Value
	require.NoError(t, reg.Register(r, "valve/open", func(id *wrapperspb.Int64Value) *wrapperspb.BoolValue {
		got = id
		return wrapperspb.Bool(false)
	}))

	payload, err := proto.Marshal(wrapperspb.Int64(0))
	require.NoError(t, err)
	require.Empty(t, payload)

	resp := call(t, r, "valve/open", payload)
	require.True(t, resp.IsSuccess(), resp.ErrorMessage)
	require.NotNil(t, got)
	assert.Equal(t, int64(0), got.GetValue())
	assert.Empty(t, resp.Payload)

	// JSON 仍要求负载
	jreg := New(JSONSerializer{})
	jr := router.New()
	require.NoError(t, jreg.Register(jr, "valve/open", func(req valveRequest) {}))
	resp = call(t, jr, "valve/open", nil)
	assert.Equal(t, types.StatusInvalidRequest, resp.Status)

	assert.True(t, AcceptsEmpty(ProtoSerializer{}))
	assert.False(t, AcceptsEmpty(JSONSerializer{}))
}

func TestNewSerializer(t *testing.T) {
	s, err := NewSerializer("")
	require.NoError(t, err)
	assert.Equal(t, "json", s.Name())

	_, err = NewSerializer("xml")
	assert.ErrorIs(t, err, ErrUnknownSerializer)
}
