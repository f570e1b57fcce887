//go:build !windows

package session

import "syscall"

// isProcessAlive reports whether pid exists. EPERM means it exists under
// another user.
func isProcessAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}
