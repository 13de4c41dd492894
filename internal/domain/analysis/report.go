package analysis

import (
	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

// Overall status agregat satu report
type Overall string

const (
	OverallAllOK     Overall = "all-ok"
	OverallPartial   Overall = "partial"
	OverallAllFailed Overall = "all-failed"
)

// ToolSection satu entry report per tool. Schema ini adalah satu-satunya
// bentuk yang diobservasi keluar; menambah/menghapus tool di registry
// mengubah isi array, bukan schema-nya.
type ToolSection struct {
	Tool      string        `json:"tool"`
	Status    OutcomeStatus `json:"status"`
	Payload   string        `json:"payload,omitempty"`
	Stderr    string        `json:"stderr,omitempty"`
	Reason    string        `json:"reason,omitempty"`
	ExitCode  int           `json:"exit_code"`
	ElapsedMS int64         `json:"elapsed_ms"`
	Truncated bool          `json:"truncated"`
}

// Report hasil akhir satu analysis run. Immutable setelah dikembalikan.
type Report struct {
	FileName string        `json:"file_name"`
	Kind     tools.Kind    `json:"kind"`
	Overall  Overall       `json:"overall"`
	Sections []ToolSection `json:"sections"`
}

// Merge normalisasi outcome jadi satu Report. Pure dan order-independent:
// urutan section mengikuti urutan deklarasi registry (order), bukan urutan
// selesainya goroutine, supaya report byte-identical antar run.
func Merge(fileName string, kind tools.Kind, order []string, outcomes []ToolOutcome) Report {
	byTool := make(map[string]ToolOutcome, len(outcomes))
	for _, o := range outcomes {
		byTool[o.Tool] = o
	}

	sections := make([]ToolSection, 0, len(order))
	okCount := 0
	for _, name := range order {
		o, found := byTool[name]
		if !found {
			// dispatch tanpa outcome tidak boleh lolos diam-diam
			o = Failed(name, "no outcome recorded", nil)
		}
		sec := ToolSection{
			Tool:   o.Tool,
			Status: o.Status,
			Reason: o.Reason,
		}
		if o.Raw != nil {
			sec.Payload = o.Raw.Stdout
			sec.Stderr = o.Raw.Stderr
			sec.ExitCode = o.Raw.ExitCode
			sec.ElapsedMS = o.Raw.Elapsed.Milliseconds()
			sec.Truncated = o.Raw.Truncated
		}
		if o.Status == OutcomeOK {
			okCount++
		}
		sections = append(sections, sec)
	}

	overall := OverallPartial
	switch {
	case okCount == len(sections):
		// termasuk report kosong: tanpa tool, tidak ada yang gagal
		overall = OverallAllOK
	case okCount == 0:
		overall = OverallAllFailed
	}

	return Report{
		FileName: fileName,
		Kind:     kind,
		Overall:  overall,
		Sections: sections,
	}
}

// CountTools rekap status section untuk disimpan di Analysis row
func (r Report) CountTools() ToolCounts {
	c := ToolCounts{Total: len(r.Sections)}
	for _, s := range r.Sections {
		switch s.Status {
		case OutcomeOK:
			c.OK++
		case OutcomeFailed:
			c.Failed++
		case OutcomeTimedOut:
			c.TimedOut++
		case OutcomeSkipped:
			c.Skipped++
		}
	}
	return c
}

// Section lookup satu section by tool name
func (r Report) Section(tool string) (ToolSection, bool) {
	for _, s := range r.Sections {
		if s.Tool == tool {
			return s, true
		}
	}
	return ToolSection{}, false
}
