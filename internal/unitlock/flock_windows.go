//go:build windows

package unitlock

import "golang.org/x/sys/windows"

// LockFileEx range covering the first byte, which is enough for an advisory lock.
const (
	rangeLow  = 1
	rangeHigh = 0
)

func exclusive(fd uintptr) error {
	return windows.LockFileEx(
		windows.Handle(fd),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY,
		0,
		rangeLow,
		rangeHigh,
		&windows.Overlapped{},
	)
}

func unlock(fd uintptr) error {
	return windows.UnlockFileEx(windows.Handle(fd), 0, rangeLow, rangeHigh, &windows.Overlapped{})
}
