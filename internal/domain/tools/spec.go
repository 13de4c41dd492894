package tools

import (
	"strings"
	"time"
)

// Kind kategori file hasil sniffing konten (bukan ekstensi client)
type Kind string

const (
	KindImage    Kind = "image"
	KindMedia    Kind = "media"
	KindDocument Kind = "document"
	KindArchive  Kind = "archive"
	KindBinary   Kind = "binary"
	KindCapture  Kind = "capture"
	KindText     Kind = "text"
	KindUnknown  Kind = "unknown"
)

// AllKinds daftar kind yang valid untuk validasi registry
var AllKinds = []Kind{
	KindImage, KindMedia, KindDocument, KindArchive,
	KindBinary, KindCapture, KindText, KindUnknown,
}

// FilePlaceholder token yang diganti path file di argv template
const FilePlaceholder = "{file}"

// ToolSpec deskriptor statis satu analyzer eksternal.
// Immutable setelah load; dipakai read-only oleh semua worker.
type ToolSpec struct {
	Name           string        `json:"name"`
	Kinds          []Kind        `json:"kinds"`
	Argv           []string      `json:"argv"`
	Timeout        time.Duration `json:"timeout"`
	MaxOutputBytes int64         `json:"max_output_bytes"`
	MaxMemoryMB    int           `json:"max_memory_mb"`
	MaxCPUSeconds  int           `json:"max_cpu_seconds"`
	// Exit-code policy: eksplisit per tool, tidak pernah ditebak.
	// Beberapa analyzer pakai exit != 0 untuk "tidak ada temuan".
	SuccessCodes   []int `json:"success_codes"`
	NoFindingCodes []int `json:"no_finding_codes"`
	BinaryOutput   bool  `json:"binary_output"`
}

// BuildArgv substitusi path file ke template. Hanya path yang masuk;
// argumen lain tidak pernah berasal dari client.
func (t ToolSpec) BuildArgv(filePath string) []string {
	argv := make([]string, len(t.Argv))
	for i, part := range t.Argv {
		argv[i] = strings.ReplaceAll(part, FilePlaceholder, filePath)
	}
	return argv
}

// AppliesTo true kalau spec dideklarasikan untuk kind tsb
func (t ToolSpec) AppliesTo(kind Kind) bool {
	for _, k := range t.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ExitStatus klasifikasi exit code sesuai policy spec
type ExitStatus int

const (
	ExitSuccess ExitStatus = iota
	ExitNoFindings
	ExitFailure
)

// ClassifyExit memetakan exit code ke status sesuai policy.
// Default kalau SuccessCodes kosong: hanya 0 yang sukses.
func (t ToolSpec) ClassifyExit(code int) ExitStatus {
	success := t.SuccessCodes
	if len(success) == 0 {
		success = []int{0}
	}
	for _, c := range success {
		if c == code {
			return ExitSuccess
		}
	}
	for _, c := range t.NoFindingCodes {
		if c == code {
			return ExitNoFindings
		}
	}
	return ExitFailure
}
