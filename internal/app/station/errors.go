package station

import (
	"fmt"

	"github.com/dep2p/go-stationbus/pkg/types"
)

var (
	// ErrUnknownValve 阀门 ID 不存在
	ErrUnknownValve = fmt.Errorf("%w: unknown valve", types.ErrInvalidRequest)

	// ErrNotManual 非手动模式下不接受阀门命令
	ErrNotManual = fmt.Errorf("%w: valve commands require manual mode", types.ErrInvalidRequest)

	// ErrHeld 保持模式下不能启动采集
	ErrHeld = fmt.Errorf("%w: station is on hold", types.ErrInvalidRequest)
)
