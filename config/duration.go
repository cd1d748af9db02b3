package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 是可从 JSON 字符串或毫秒数解析的 time.Duration
//
//	{"poll_interval": "10ms"}
//	{"poll_interval": 10}
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler 接口
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		parsed, err := time.ParseDuration(x)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", x, err)
		}
		*d = Duration(parsed)
	case float64:
		*d = Duration(x * float64(time.Millisecond))
	default:
		return fmt.Errorf("duration must be a string like \"250ms\" or a number of milliseconds, got %s", data)
	}
	return nil
}

// MarshalJSON 输出人类可读字符串
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Duration 返回底层的 time.Duration 值
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String 返回字符串表示
func (d Duration) String() string {
	return time.Duration(d).String()
}
