package analysis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

func okOutcome(tool string) ToolOutcome {
	return Success(RawResult{Tool: tool, Stdout: tool + " output", Elapsed: 10 * time.Millisecond})
}

func TestMergeOrderIndependent(t *testing.T) {
	order := []string{"file", "strings", "exiftool"}
	a := []ToolOutcome{okOutcome("file"), okOutcome("strings"), okOutcome("exiftool")}
	b := []ToolOutcome{okOutcome("exiftool"), okOutcome("file"), okOutcome("strings")}

	r1 := Merge("x.png", tools.KindImage, order, a)
	r2 := Merge("x.png", tools.KindImage, order, b)

	j1, _ := json.Marshal(r1)
	j2, _ := json.Marshal(r2)
	if string(j1) != string(j2) {
		t.Fatalf("reports differ by arrival order:\n%s\n%s", j1, j2)
	}

	for i, name := range order {
		if r1.Sections[i].Tool != name {
			t.Fatalf("section %d = %s, want %s", i, r1.Sections[i].Tool, name)
		}
	}
}

func TestMergeOverallStatus(t *testing.T) {
	order := []string{"a", "b"}

	r := Merge("f", tools.KindImage, order, []ToolOutcome{okOutcome("a"), okOutcome("b")})
	if r.Overall != OverallAllOK {
		t.Fatalf("want all-ok, got %s", r.Overall)
	}

	r = Merge("f", tools.KindImage, order, []ToolOutcome{okOutcome("a"), Failed("b", "exit code 2", nil)})
	if r.Overall != OverallPartial {
		t.Fatalf("want partial, got %s", r.Overall)
	}

	r = Merge("f", tools.KindImage, order, []ToolOutcome{
		Failed("a", "exit code 2", nil),
		TimedOut("b", nil),
	})
	if r.Overall != OverallAllFailed {
		t.Fatalf("want all-failed, got %s", r.Overall)
	}
}

func TestMergeEmptySetIsValidAllOK(t *testing.T) {
	r := Merge("mystery.bin", tools.KindUnknown, nil, nil)
	if r.Overall != OverallAllOK {
		t.Fatalf("empty report should be all-ok, got %s", r.Overall)
	}
	if len(r.Sections) != 0 {
		t.Fatalf("expected zero sections, got %d", len(r.Sections))
	}
}

func TestMergeMissingOutcomeBecomesFailed(t *testing.T) {
	// dispatch tanpa outcome tidak boleh hilang diam-diam
	r := Merge("f", tools.KindImage, []string{"a", "b"}, []ToolOutcome{okOutcome("a")})
	sec, ok := r.Section("b")
	if !ok {
		t.Fatal("missing section for dispatched tool")
	}
	if sec.Status != OutcomeFailed {
		t.Fatalf("want failed, got %s", sec.Status)
	}
	if r.Overall != OverallPartial {
		t.Fatalf("want partial, got %s", r.Overall)
	}
}

func TestMergeToolSetMatchesOrderExactly(t *testing.T) {
	// outcome nyasar di luar order tidak boleh masuk report
	r := Merge("f", tools.KindImage, []string{"a"}, []ToolOutcome{
		okOutcome("a"),
		okOutcome("rogue"),
	})
	if len(r.Sections) != 1 || r.Sections[0].Tool != "a" {
		t.Fatalf("unexpected sections: %+v", r.Sections)
	}
}

func TestMergeCarriesRawFields(t *testing.T) {
	raw := RawResult{
		Tool:      "strings",
		ExitCode:  0,
		Stdout:    "hello",
		Stderr:    "warn",
		Elapsed:   1500 * time.Millisecond,
		Truncated: true,
	}
	r := Merge("f", tools.KindBinary, []string{"strings"}, []ToolOutcome{Success(raw)})
	sec := r.Sections[0]
	if sec.Payload != "hello" || sec.Stderr != "warn" {
		t.Fatalf("payload not carried: %+v", sec)
	}
	if !sec.Truncated {
		t.Fatal("truncation flag lost")
	}
	if sec.ElapsedMS != 1500 {
		t.Fatalf("elapsed = %d, want 1500", sec.ElapsedMS)
	}
}

func TestCountTools(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	r := Merge("f", tools.KindImage, order, []ToolOutcome{
		okOutcome("a"),
		Failed("b", "x", nil),
		TimedOut("c", nil),
		Skipped("d", "binary-not-found"),
	})
	c := r.CountTools()
	if c.OK != 1 || c.Failed != 1 || c.TimedOut != 1 || c.Skipped != 1 || c.Total != 4 {
		t.Fatalf("unexpected counts: %+v", c)
	}
}
