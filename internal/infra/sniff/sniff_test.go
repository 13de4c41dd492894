package sniff

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectByMagicNotExtension(t *testing.T) {
	d := NewDetector()

	// PNG yang menyamar sebagai .txt tetap terdeteksi image
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	kind, err := d.Detect(writeFile(t, "innocent.txt", png))
	if err != nil {
		t.Fatal(err)
	}
	if kind != tools.KindImage {
		t.Fatalf("png sniffed as %s", kind)
	}
}

func TestDetectTable(t *testing.T) {
	d := NewDetector()

	elf := append([]byte("\x7fELF"), bytes.Repeat([]byte{1}, 60)...)
	mp4 := append([]byte{0, 0, 0, 0x18}, []byte("ftypmp42more")...)
	pcap := append([]byte("\xd4\xc3\xb2\xa1"), bytes.Repeat([]byte{0}, 20)...)

	cases := []struct {
		name string
		data []byte
		want tools.Kind
	}{
		{"a.jpg", []byte("\xff\xd8\xff\xe0junkjunk"), tools.KindImage},
		{"doc.pdf", []byte("%PDF-1.7\n%stuff"), tools.KindDocument},
		{"prog", elf, tools.KindBinary},
		{"win.exe", []byte("MZ\x90\x00junk"), tools.KindBinary},
		{"clip.mp4", mp4, tools.KindMedia},
		{"song.ogg", []byte("OggSjunkjunkjunk"), tools.KindMedia},
		{"dump.pcap", pcap, tools.KindCapture},
		{"notes", []byte("plain readable notes\nwith lines\n"), tools.KindText},
		{"blob", []byte{0x01, 0x02, 0x83, 0x99, 0xfe, 0x10, 0x44}, tools.KindUnknown},
		{"x.gz", []byte("\x1f\x8b\x08junk"), tools.KindArchive},
	}

	for _, c := range cases {
		kind, err := d.Detect(writeFile(t, c.name, c.data))
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if kind != c.want {
			t.Errorf("%s: got %s want %s", c.name, kind, c.want)
		}
	}
}

func TestDetectZipVsOfficeDocument(t *testing.T) {
	d := NewDetector()
	dir := t.TempDir()

	makeZip := func(name, inner string) string {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		zw := zip.NewWriter(f)
		w, err := zw.Create(inner)
		if err != nil {
			t.Fatal(err)
		}
		w.Write([]byte("<xml/>"))
		zw.Close()
		f.Close()
		return path
	}

	kind, err := d.Detect(makeZip("report.docx", "[Content_Types].xml"))
	if err != nil {
		t.Fatal(err)
	}
	if kind != tools.KindDocument {
		t.Fatalf("docx sniffed as %s", kind)
	}

	kind, err = d.Detect(makeZip("bundle.zip", "payload.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if kind != tools.KindArchive {
		t.Fatalf("plain zip sniffed as %s", kind)
	}
}

func TestDetectUnreadableFile(t *testing.T) {
	d := NewDetector()
	if _, err := d.Detect(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDetectEmptyFile(t *testing.T) {
	d := NewDetector()
	kind, err := d.Detect(writeFile(t, "empty", nil))
	if err != nil {
		t.Fatalf("empty file should not error: %v", err)
	}
	if kind != tools.KindUnknown {
		t.Fatalf("empty file sniffed as %s", kind)
	}
}

func TestReadHeaderFillsAcrossShortReads(t *testing.T) {
	// sumber yang kasih satu byte per Read; header tetap harus penuh
	// supaya magic di offset jauh kebaca
	tarHead := make([]byte, headerLen)
	copy(tarHead[257:], "ustar")
	head, err := readHeader(iotest.OneByteReader(bytes.NewReader(tarHead)))
	if err != nil {
		t.Fatal(err)
	}
	if len(head) != headerLen {
		t.Fatalf("header length %d, want %d", len(head), headerLen)
	}
	if kind := sniffHeader(head); kind != tools.KindArchive {
		t.Fatalf("tar sniffed as %s", kind)
	}
}

func TestReadHeaderShortInput(t *testing.T) {
	head, err := readHeader(iotest.OneByteReader(bytes.NewReader([]byte("%PDF-1.7"))))
	if err != nil {
		t.Fatal(err)
	}
	if string(head) != "%PDF-1.7" {
		t.Fatalf("header %q", head)
	}
}
