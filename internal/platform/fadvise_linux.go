//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

//nolint:gosec // G115: fd values are small non-negative integers
func adviseSequential(f *os.File) {
	//nolint:errcheck // fadvise is advisory
	unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}

//nolint:gosec // G115: fd values are small non-negative integers
func adviseRandom(f *os.File) {
	//nolint:errcheck // fadvise is advisory
	unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_RANDOM)
}
