//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking
// the preview browser's helper processes down with it.
func KillProcessGroup(pid int) {
	// Errors ignored: the launcher kill that follows is the fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
