//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills the process tree rooted at pid with taskkill.
// Non-positive PIDs are ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// /F force, /T whole tree. launcher.Kill() runs afterwards as a fallback.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- numeric PID
}
