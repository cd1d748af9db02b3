//go:build linux

package acquisition

import "golang.org/x/sys/unix"

// samplerNice 采样线程的目标 nice 值
const samplerNice = -10

// raiseThreadPriority 提升当前 OS 线程的调度优先级
//
// 调用方必须已执行 runtime.LockOSThread。没有 CAP_SYS_NICE 时返回 EPERM。
func raiseThreadPriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), samplerNice)
}
