package tools

import (
	"fmt"
	"strings"
)

// ConfigError kesalahan konfigurasi registry. Fatal saat startup,
// tidak pernah muncul di request time.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "tool registry config: " + e.Msg }

// Registry pemetaan kind -> urutan ToolSpec. Dibangun sekali saat startup,
// read-only setelahnya supaya hot path dispatch bebas lock.
type Registry struct {
	specs  []ToolSpec
	byKind map[Kind][]ToolSpec
}

// NewRegistry validasi + index daftar spec. Urutan deklarasi dipertahankan
// supaya report reproducible byte-per-byte antar run.
func NewRegistry(specs []ToolSpec) (*Registry, error) {
	valid := make(map[Kind]bool, len(AllKinds))
	for _, k := range AllKinds {
		valid[k] = true
	}

	seen := make(map[string]bool, len(specs))
	byKind := make(map[Kind][]ToolSpec)

	for _, s := range specs {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, &ConfigError{Msg: "tool with empty name"}
		}
		if seen[name] {
			return nil, &ConfigError{Msg: fmt.Sprintf("duplicate tool name: %s", name)}
		}
		seen[name] = true

		if len(s.Argv) == 0 {
			return nil, &ConfigError{Msg: fmt.Sprintf("tool %s: empty argv", name)}
		}
		hasFile := false
		for _, part := range s.Argv {
			if strings.Contains(part, FilePlaceholder) {
				hasFile = true
				break
			}
		}
		if !hasFile {
			return nil, &ConfigError{Msg: fmt.Sprintf("tool %s: argv has no %s placeholder", name, FilePlaceholder)}
		}
		if s.Timeout <= 0 {
			return nil, &ConfigError{Msg: fmt.Sprintf("tool %s: non-positive timeout", name)}
		}
		if len(s.Kinds) == 0 {
			return nil, &ConfigError{Msg: fmt.Sprintf("tool %s: no kinds declared", name)}
		}
		for _, k := range s.Kinds {
			if !valid[k] {
				return nil, &ConfigError{Msg: fmt.Sprintf("tool %s: unknown kind %q", name, k)}
			}
			byKind[k] = append(byKind[k], s)
		}
	}

	return &Registry{specs: specs, byKind: byKind}, nil
}

// Applicable urutan spec untuk satu kind, sesuai urutan deklarasi.
// Slice hasil adalah copy supaya caller tidak bisa memutasi state registry.
func (r *Registry) Applicable(kind Kind) []ToolSpec {
	src := r.byKind[kind]
	if len(src) == 0 {
		return nil
	}
	out := make([]ToolSpec, len(src))
	copy(out, src)
	return out
}

// Names urutan nama tool untuk satu kind; dipakai aggregator untuk
// re-impose urutan deterministik saat merge.
func (r *Registry) Names(kind Kind) []string {
	src := r.byKind[kind]
	names := make([]string, 0, len(src))
	for _, s := range src {
		names = append(names, s.Name)
	}
	return names
}

// All seluruh spec terdaftar, urutan deklarasi
func (r *Registry) All() []ToolSpec {
	out := make([]ToolSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Len jumlah spec terdaftar
func (r *Registry) Len() int { return len(r.specs) }
