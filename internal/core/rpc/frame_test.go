package rpc

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-stationbus/pkg/types"
)

func TestFrameCodec_RoundTrip(t *testing.T) {
	codec := FrameCodec{}
	buf := make([]byte, codec.Size())

	in := Frame{
		Kind:         FrameResponse,
		RequestID:    "8c7e1f3a-0000-4000-8000-000000000001",
		Route:        "valve/open",
		ReplyTo:      "StationReply.abc",
		Status:       types.StatusHandlerNotFound,
		ProcessingMs: 17,
		ErrorMessage: "no handler",
		Payload:      []byte(`{"valve":3}`),
	}
	codec.Encode(buf, in)
	assert.Equal(t, in, codec.Decode(buf))
}

func TestFrameCodec_EmptyPayload(t *testing.T) {
	codec := FrameCodec{}
	buf := bytes.Repeat([]byte{0xAA}, codec.Size())

	codec.Encode(buf, Frame{Kind: FrameRequest, Route: "station/status"})
	out := codec.Decode(buf)
	assert.Nil(t, out.Payload)
	assert.Equal(t, "station/status", out.Route)
	assert.Empty(t, out.RequestID)
}

// TestFrameCodec_CorruptLengths 越界长度字段按容量截断，不 panic
func TestFrameCodec_CorruptLengths(t *testing.T) {
	buf := bytes.Repeat([]byte{0xFF}, FrameSize)

	var out Frame
	assert.NotPanics(t, func() { out = FrameCodec{}.Decode(buf) })
	assert.Len(t, out.Payload, MaxPayload)
	assert.Len(t, out.Route, MaxRoute)
}

func TestFrame_Validate(t *testing.T) {
	ok := Frame{Route: "x", Payload: make([]byte, MaxPayload)}
	assert.NoError(t, ok.Validate())

	big := Frame{Route: "x", Payload: make([]byte, MaxPayload+1)}
	err := big.Validate()
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.ErrorIs(t, err, types.ErrInvalidRequest)

	long := Frame{Route: strings.Repeat("r", MaxRoute+1)}
	assert.ErrorIs(t, long.Validate(), ErrFieldTooLong)
}

func TestResponseFrame_TruncatesErrorMessage(t *testing.T) {
	msg := strings.Repeat("阀", MaxErrorMessage) // 每个字符 3 字节
	f := ResponseFrame("valve/open", &types.CommandResponse{
		RequestID:    "r1",
		Status:       types.StatusInternalError,
		ErrorMessage: msg,
	})
	require.LessOrEqual(t, len(f.ErrorMessage), MaxErrorMessage)
	assert.True(t, strings.HasPrefix(msg, f.ErrorMessage))
	assert.Zero(t, len(f.ErrorMessage)%3)

	resp := f.Response()
	assert.Equal(t, "r1", resp.RequestID)
	assert.Equal(t, types.StatusInternalError, resp.Status)
}

func TestFrameKind_String(t *testing.T) {
	assert.Equal(t, "request", FrameRequest.String())
	assert.Equal(t, "response", FrameResponse.String())
	assert.Equal(t, "invalid", FrameKind(0).String())
}
