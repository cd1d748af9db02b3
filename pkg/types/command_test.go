package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		err  error
		want StatusCode
	}{
		{nil, StatusSuccess},
		{fmt.Errorf("decode: %w", ErrSerialization), StatusSerializationError},
		{fmt.Errorf("empty payload: %w", ErrInvalidRequest), StatusInvalidRequest},
		{ErrHandlerNotFound, StatusHandlerNotFound},
		{context.DeadlineExceeded, StatusTimeout},
		{fmt.Errorf("wrapped: %w", context.Canceled), StatusTimeout},
		{ErrTimeout, StatusTimeout},
		{errors.New("valve stuck"), StatusInternalError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFromError(tc.err), "%v", tc.err)
	}
}

func TestCommandResponse_Err(t *testing.T) {
	ok := &CommandResponse{Status: StatusSuccess}
	assert.NoError(t, ok.Err())
	assert.True(t, ok.IsSuccess())

	failed := NewErrorResponse("r1", StatusHandlerNotFound, "no route valve/open")
	err := failed.Err()
	assert.ErrorIs(t, err, ErrHandlerNotFound)
	assert.Contains(t, err.Error(), "valve/open")

	var nilResp *CommandResponse
	assert.ErrorIs(t, nilResp.Err(), ErrInternal)
	assert.False(t, nilResp.IsSuccess())
}

func TestStatusCode_String(t *testing.T) {
	assert.Equal(t, "HandlerNotFound", StatusHandlerNotFound.String())
	assert.Equal(t, "Status(42)", StatusCode(42).String())
}

func TestSignalConfig_Validate(t *testing.T) {
	good := SignalConfig{ID: 1, Name: "pressure", SampleRateHz: 100, Min: 0, Max: 10}
	assert.NoError(t, good.Validate())
	assert.True(t, good.InRange(5))
	assert.False(t, good.InRange(11))

	bad := good
	bad.SampleRateHz = 0
	assert.Error(t, bad.Validate())

	bad = good
	bad.Name = ""
	assert.Error(t, bad.Validate())

	bad = good
	bad.Min, bad.Max = 10, 0
	assert.Error(t, bad.Validate())
}
