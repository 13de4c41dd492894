//go:build !linux

package sandbox

import "github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"

// prlimit hanya ada di Linux; platform lain jalan tanpa rlimit ceiling.
func applyLimits(pid int, spec tools.ToolSpec) error { return nil }
