//go:build !linux

package cpu

import "errors"

var errUnsupported = errors.New("cpu: affinity is not supported on this platform")

func pinToCore(_ int) (int, error) {
	return -1, errUnsupported
}
