// Package platform holds OS-specific I/O hints. Every hint is advisory:
// failures are ignored and unsupported platforms fall back to no-ops.
package platform

import "os"

// AdviseSequential tells the kernel that f will be read front to back once,
// which enlarges read-ahead on Linux.
func AdviseSequential(f *os.File) {
	adviseSequential(f)
}

// AdviseRandom tells the kernel that only scattered small reads follow.
func AdviseRandom(f *os.File) {
	adviseRandom(f)
}
