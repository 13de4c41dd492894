package sandbox

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/bryanwahyu/fileprobe-sec/internal/domain/analysis"
	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

func needsBinary(t *testing.T, name string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("unix-only test")
	}
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not installed", name)
	}
}

func sampleFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.txt")
	if err := os.WriteFile(path, []byte("hello sandbox\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func spec(name string, timeout time.Duration, maxOut int64, argv ...string) tools.ToolSpec {
	return tools.ToolSpec{
		Name:           name,
		Kinds:          []tools.Kind{tools.KindText},
		Argv:           argv,
		Timeout:        timeout,
		MaxOutputBytes: maxOut,
	}
}

func TestExecuteSuccess(t *testing.T) {
	needsBinary(t, "cat")
	box := New(t.TempDir())

	out := box.Execute(context.Background(), sampleFile(t),
		spec("cat", 5*time.Second, 1<<20, "cat", "{file}"))

	if out.Status != analysis.OutcomeOK {
		t.Fatalf("status %s reason %q", out.Status, out.Reason)
	}
	if out.Raw == nil || !strings.Contains(out.Raw.Stdout, "hello sandbox") {
		t.Fatalf("stdout not captured: %+v", out.Raw)
	}
	if out.Raw.ExitCode != 0 {
		t.Fatalf("exit code %d", out.Raw.ExitCode)
	}
	if out.Raw.Truncated {
		t.Fatal("small output flagged truncated")
	}
}

func TestExecuteTimedOutKillsProcess(t *testing.T) {
	needsBinary(t, "sleep")
	box := New(t.TempDir())

	start := time.Now()
	out := box.Execute(context.Background(), sampleFile(t),
		spec("sleeper", 200*time.Millisecond, 1<<20, "sleep", "30"))
	elapsed := time.Since(start)

	if out.Status != analysis.OutcomeTimedOut {
		t.Fatalf("status %s, want timedout", out.Status)
	}
	// timeout + overhead terbatas, bukan menunggu sleep 30 detik
	if elapsed > 5*time.Second {
		t.Fatalf("kill took %s", elapsed)
	}
}

func TestExecuteOutputCeilingTruncates(t *testing.T) {
	needsBinary(t, "cat")
	box := New(t.TempDir())

	big := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(big, []byte(strings.Repeat("A", 100*1024)), 0o600); err != nil {
		t.Fatal(err)
	}

	const ceiling = 1024
	out := box.Execute(context.Background(), big,
		spec("cat", 10*time.Second, ceiling, "cat", "{file}"))

	if out.Status != analysis.OutcomeOK {
		t.Fatalf("status %s reason %q", out.Status, out.Reason)
	}
	if !out.Raw.Truncated {
		t.Fatal("output over ceiling not flagged truncated")
	}
	if int64(len(out.Raw.Stdout)) != ceiling {
		t.Fatalf("payload length %d, want exactly %d", len(out.Raw.Stdout), ceiling)
	}
}

func TestExecuteMissingBinarySkipped(t *testing.T) {
	box := New(t.TempDir())

	out := box.Execute(context.Background(), sampleFile(t),
		spec("ghost", time.Second, 1<<20, "definitely-not-a-real-binary-xyz", "{file}"))

	if out.Status != analysis.OutcomeSkipped {
		t.Fatalf("status %s, want skipped", out.Status)
	}
	if out.Reason != "binary-not-found" {
		t.Fatalf("reason %q", out.Reason)
	}
}

func TestExecuteExitCodePolicy(t *testing.T) {
	needsBinary(t, "false")
	box := New(t.TempDir())

	// tanpa policy, exit 1 = failed
	out := box.Execute(context.Background(), sampleFile(t),
		spec("false", 5*time.Second, 1<<20, "false", "{file}"))
	if out.Status != analysis.OutcomeFailed {
		t.Fatalf("status %s, want failed", out.Status)
	}

	// policy eksplisit: exit 1 berarti "tidak ada temuan", tetap sukses
	s := spec("false-ok", 5*time.Second, 1<<20, "false", "{file}")
	s.NoFindingCodes = []int{1}
	out = box.Execute(context.Background(), sampleFile(t), s)
	if out.Status != analysis.OutcomeOK {
		t.Fatalf("status %s, want ok via no-finding policy", out.Status)
	}
	if out.Reason != "no-findings" {
		t.Fatalf("reason %q", out.Reason)
	}
}

func TestExecuteScratchDirCleanedUp(t *testing.T) {
	needsBinary(t, "cat")
	root := t.TempDir()
	box := New(root)

	box.Execute(context.Background(), sampleFile(t),
		spec("cat", 5*time.Second, 1<<20, "cat", "{file}"))

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "run-") {
			t.Fatalf("scratch dir %s left behind", e.Name())
		}
	}
}

func TestExecuteConcurrentInvocationsIsolated(t *testing.T) {
	needsBinary(t, "cat")
	box := New(t.TempDir())
	file := sampleFile(t)
	s := spec("cat", 5*time.Second, 1<<20, "cat", "{file}")

	done := make(chan analysis.ToolOutcome, 8)
	for i := 0; i < 8; i++ {
		go func() {
			done <- box.Execute(context.Background(), file, s)
		}()
	}
	for i := 0; i < 8; i++ {
		out := <-done
		if out.Status != analysis.OutcomeOK {
			t.Fatalf("concurrent run failed: %s %s", out.Status, out.Reason)
		}
	}
}

func TestBoundedCaptureExactCeiling(t *testing.T) {
	c := newBoundedCapture(10)
	c.Write([]byte("0123456789abcdef"))
	if got := c.String(); got != "0123456789" {
		t.Fatalf("captured %q", got)
	}
	if !c.Truncated() {
		t.Fatal("not flagged truncated")
	}

	c2 := newBoundedCapture(10)
	c2.Write([]byte("short"))
	if c2.Truncated() {
		t.Fatal("short write flagged truncated")
	}
}
