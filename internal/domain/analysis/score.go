package analysis

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

// Suspicion scoring di atas report yang sudah jadi. Heuristik murni atas
// output tool, tidak pernah menyentuh file aslinya.

var kindExtensions = map[tools.Kind][]string{
	tools.KindImage:    {".jpg", ".jpeg", ".png", ".gif", ".tif", ".tiff", ".bmp", ".webp"},
	tools.KindMedia:    {".mp4", ".mkv", ".webm", ".avi", ".mov", ".mp3", ".wav", ".ogg", ".flac"},
	tools.KindDocument: {".pdf", ".docx", ".doc", ".odt"},
	tools.KindArchive:  {".zip", ".gz", ".tar", ".7z", ".rar"},
	tools.KindCapture:  {".pcap", ".pcapng", ".cap"},
}

var suspiciousKeywords = []string{
	"password", "secret", "key=", "private key", "-----begin",
}

// Score hitung suspicion score 0-100 + verdict + alasan dari satu report.
func Score(r Report, fileName string) (int, Verdict, []string) {
	score := 0
	var reasons []string
	add := func(n int, reason string) {
		score += n
		reasons = append(reasons, reason)
	}

	// kind hasil sniffing vs ekstensi yang diklaim client
	ext := strings.ToLower(filepath.Ext(fileName))
	if exts, ok := kindExtensions[r.Kind]; ok && ext != "" {
		matched := false
		for _, e := range exts {
			if ext == e {
				matched = true
				break
			}
		}
		if !matched {
			add(15, fmt.Sprintf("content sniffed as %s but extension is %s", r.Kind, ext))
		}
	}

	// marker binary tertanam di output strings
	if sec, ok := r.Section("strings"); ok && sec.Payload != "" {
		lower := strings.ToLower(sec.Payload)
		head := lower
		if len(head) > 800 {
			head = head[:800]
		}
		if strings.Contains(head, "mz") {
			add(25, "found 'MZ' header inside file, possible embedded PE")
		}
		if strings.Contains(head, "elf") {
			add(22, "found 'ELF' inside file, possible embedded binary")
		}
		for _, kw := range suspiciousKeywords {
			if strings.Contains(lower, kw) {
				add(8, fmt.Sprintf("found suspicious keyword: %s", kw))
			}
		}
	}

	// binwalk menemukan konten tertanam
	if sec, ok := r.Section("binwalk"); ok && sec.Status == OutcomeOK {
		out := strings.TrimSpace(sec.Payload)
		if out != "" {
			lines := len(strings.Split(out, "\n"))
			if lines > 2 {
				n := 5 + lines
				if n > 25 {
					n = 25
				}
				add(n, fmt.Sprintf("binwalk found embedded content (%d lines)", lines))
			}
		}
	}

	// probe media rewel saat parsing
	for _, probe := range []string{"ffprobe", "mediainfo"} {
		if sec, ok := r.Section(probe); ok && sec.Stderr != "" {
			add(10, probe+" reported errors parsing media")
			break
		}
	}

	// readelf konfirmasi header ELF
	if sec, ok := r.Section("readelf"); ok && strings.Contains(sec.Payload, "ELF") {
		add(25, "readelf reports ELF header inside file")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	verdict := VerdictClean
	switch {
	case score >= 50:
		verdict = VerdictMalicious
	case score >= 25:
		verdict = VerdictSuspicious
	}
	return score, verdict, reasons
}
