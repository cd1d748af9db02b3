//go:build unix

package shm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// fileMapping 基于 mmap(MAP_SHARED) 与 flock 的映射
type fileMapping struct {
	fd   int
	data []byte
}

func (m *fileMapping) bytes() []byte { return m.data }

func (m *fileMapping) tryLockFile() error {
	for {
		err := unix.Flock(m.fd, unix.LOCK_EX|unix.LOCK_NB)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EWOULDBLOCK):
			return errWouldBlock
		default:
			return err
		}
	}
}

func (m *fileMapping) unlockFile() error {
	return unix.Flock(m.fd, unix.LOCK_UN)
}

func (m *fileMapping) close() error {
	var err error
	if m.data != nil {
		err = unix.Munmap(m.data)
		m.data = nil
	}
	if cerr := unix.Close(m.fd); err == nil {
		err = cerr
	}
	return err
}

// openMapping 打开后备文件，在文件锁内完成创建或校验，然后映射
func openMapping(path string, geo geometry, timeout time.Duration) (mapping, bool, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_CLOEXEC, 0o600)
	if err != nil {
		return nil, false, fmt.Errorf("%w: open %s: %w", ErrUnavailable, path, err)
	}
	m := &fileMapping{fd: fd}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := pollLock(ctx, m.tryLockFile); err != nil {
		unix.Close(fd)
		return nil, false, err
	}

	creator, err := m.initLocked(geo)
	_ = m.unlockFile()
	if err != nil {
		m.close()
		return nil, false, err
	}
	return m, creator, nil
}

// initLocked 持文件锁时执行创建/附着协议
func (m *fileMapping) initLocked(geo geometry) (bool, error) {
	var st unix.Stat_t
	if err := unix.Fstat(m.fd, &st); err != nil {
		return false, fmt.Errorf("%w: fstat: %w", ErrUnavailable, err)
	}

	size := SegmentSize(geo.itemSize, geo.capacity)
	creator := false

	switch st.Size {
	case 0:
		if err := unix.Ftruncate(m.fd, int64(size)); err != nil {
			return false, fmt.Errorf("%w: ftruncate: %w", ErrUnavailable, err)
		}
		creator = true
	case int64(size):
	default:
		return false, fmt.Errorf("%w: size %d, want %d", ErrLayoutMismatch, st.Size, size)
	}

	data, err := unix.Mmap(m.fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return false, fmt.Errorf("%w: mmap: %w", ErrUnavailable, err)
	}
	m.data = data

	if creator || preambleBlank(data) {
		writePreamble(data, geo)
		return true, nil
	}
	return false, checkPreamble(data, geo)
}
