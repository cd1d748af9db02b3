//go:build !unix

package shm

import "time"

func openMapping(string, geometry, time.Duration) (mapping, bool, error) {
	return nil, false, ErrUnsupported
}
