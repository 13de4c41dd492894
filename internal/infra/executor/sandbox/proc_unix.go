//go:build unix

package sandbox

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcGroup taruh child di process group sendiri supaya timeout bisa
// membunuh seluruh pohon prosesnya, bukan cuma parent.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	// pid negatif = seluruh group
	_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
}
