package acquisition

import "errors"

var (
	// ErrNoSignals 没有可采集的信号
	ErrNoSignals = errors.New("acquisition: no signals configured")

	// ErrClosed 服务已关闭
	ErrClosed = errors.New("acquisition: service closed")

	// ErrSimulatedFault 模拟仪器注入的故障
	ErrSimulatedFault = errors.New("acquisition: simulated instrument fault")
)
