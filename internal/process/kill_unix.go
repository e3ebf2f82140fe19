//go:build !windows

package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking
// down the browser and its renderer children. Non-positive PIDs are ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// launcher.Kill() runs afterwards as a fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
