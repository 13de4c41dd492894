//go:build linux

package sandbox

import (
	"golang.org/x/sys/unix"

	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

// applyLimits pasang ceiling memori/CPU ke child yang sudah jalan via
// prlimit(2). Best-effort: child bisa saja exit duluan, itu bukan error
// yang menggagalkan invokasi.
func applyLimits(pid int, spec tools.ToolSpec) error {
	if spec.MaxMemoryMB > 0 {
		lim := &unix.Rlimit{
			Cur: uint64(spec.MaxMemoryMB) << 20,
			Max: uint64(spec.MaxMemoryMB) << 20,
		}
		if err := unix.Prlimit(pid, unix.RLIMIT_AS, lim, nil); err != nil {
			return err
		}
	}
	if spec.MaxCPUSeconds > 0 {
		lim := &unix.Rlimit{
			Cur: uint64(spec.MaxCPUSeconds),
			Max: uint64(spec.MaxCPUSeconds),
		}
		if err := unix.Prlimit(pid, unix.RLIMIT_CPU, lim, nil); err != nil {
			return err
		}
	}
	return nil
}
