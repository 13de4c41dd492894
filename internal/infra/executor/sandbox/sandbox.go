package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bryanwahyu/fileprobe-sec/internal/domain/analysis"
	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

// Sandbox menjalankan satu invokasi tool dengan limit waktu, output,
// memori/CPU (best-effort) dan scratch dir eksklusif per run.
// Stateless; aman dipakai banyak goroutine sekaligus.
type Sandbox struct {
	scratchRoot string
}

func New(scratchRoot string) *Sandbox {
	return &Sandbox{scratchRoot: scratchRoot}
}

// Execute jalankan spec terhadap filePath. Selalu kembali tepat satu
// ToolOutcome; tidak pernah meninggalkan child process hidup.
func (s *Sandbox) Execute(ctx context.Context, filePath string, spec tools.ToolSpec) analysis.ToolOutcome {
	argv := spec.BuildArgv(filePath)

	bin, err := exec.LookPath(argv[0])
	if err != nil {
		// original behavior: tool yang tidak terpasang bukan error fatal
		return analysis.Skipped(spec.Name, "binary-not-found")
	}

	scratch, err := os.MkdirTemp(s.scratchRoot, "run-"+spec.Name+"-")
	if err != nil {
		return analysis.Failed(spec.Name, fmt.Sprintf("scratch dir: %v", err), nil)
	}
	defer os.RemoveAll(scratch)

	maxOut := spec.MaxOutputBytes
	if maxOut <= 0 {
		maxOut = tools.DefaultMaxOutputBytes
	}
	stdout := newBoundedCapture(maxOut)
	stderr := newBoundedCapture(maxOut)

	cmd := exec.Command(bin, argv[1:]...)
	cmd.Dir = scratch
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// env minimal; tool tidak butuh environment caller
	cmd.Env = []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + scratch,
		"TMPDIR=" + scratch,
		"LANG=C.UTF-8",
	}
	setProcGroup(cmd)

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = tools.DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return analysis.Failed(spec.Name, fmt.Sprintf("start: %v", err), nil)
	}

	if err := applyLimits(cmd.Process.Pid, spec); err != nil {
		logrus.WithFields(logrus.Fields{"tool": spec.Name, "pid": cmd.Process.Pid}).
			Debugf("rlimit not applied: %v", err)
	}

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	var waitErr error
	timedOut := false
	select {
	case waitErr = <-waitCh:
	case <-runCtx.Done():
		timedOut = true
		// bunuh seluruh process group supaya tidak ada descendant nyangkut
		killProcGroup(cmd)
		waitErr = <-waitCh
	}
	elapsed := time.Since(start)

	raw := analysis.RawResult{
		Tool:      spec.Name,
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Elapsed:   elapsed,
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}

	if timedOut && ctx.Err() == nil {
		raw.ExitCode = -1
		return analysis.TimedOut(spec.Name, &raw)
	}
	if ctx.Err() != nil {
		// cancel level analisis (bukan timeout per-tool)
		raw.ExitCode = -1
		return analysis.Failed(spec.Name, "canceled", &raw)
	}

	exitCode := 0
	if waitErr != nil {
		var ee *exec.ExitError
		if errors.As(waitErr, &ee) {
			exitCode = ee.ExitCode()
		} else {
			return analysis.Failed(spec.Name, fmt.Sprintf("wait: %v", waitErr), &raw)
		}
	}
	raw.ExitCode = exitCode

	switch spec.ClassifyExit(exitCode) {
	case tools.ExitSuccess:
		return analysis.Success(raw)
	case tools.ExitNoFindings:
		out := analysis.Success(raw)
		out.Reason = "no-findings"
		return out
	default:
		return analysis.Failed(spec.Name, fmt.Sprintf("exit code %d", exitCode), &raw)
	}
}
