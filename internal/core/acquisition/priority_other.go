//go:build !linux

package acquisition

// raiseThreadPriority 非 Linux 平台不调整线程优先级
func raiseThreadPriority() error {
	return nil
}
