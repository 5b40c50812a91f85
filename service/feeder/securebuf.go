package feeder

import "runtime"

// Wipe overwrites every byte of the buffer with zero. The KeepAlive
// barrier keeps the wipe from being elided as a dead store. Must be
// called on every exit path once a buffer held entropy material.
func Wipe(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}
