package intake

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestSaveWritesUnderRoot(t *testing.T) {
	in, err := New(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatal(err)
	}

	path, size, err := in.Save("report.pdf", strings.NewReader("%PDF-1.7 data"))
	if err != nil {
		t.Fatal(err)
	}
	if size != int64(len("%PDF-1.7 data")) {
		t.Fatalf("size %d", size)
	}
	if filepath.Base(path) != "report.pdf" {
		t.Fatalf("unexpected name %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "%PDF-1.7 data" {
		t.Fatalf("content %q", data)
	}
}

func TestSaveDeduplicatesNames(t *testing.T) {
	in, err := New(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for i := 0; i < 3; i++ {
		path, _, err := in.Save("evidence.bin", strings.NewReader("x"))
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, filepath.Base(path))
	}

	want := []string{"evidence.bin", "evidence_1.bin", "evidence_2.bin"}
	for i, w := range want {
		if names[i] != w {
			t.Fatalf("upload %d saved as %s, want %s", i, names[i], w)
		}
	}
}

func TestSaveConcurrentSameName(t *testing.T) {
	root := t.TempDir()
	in, err := New(root, 1<<20)
	if err != nil {
		t.Fatal(err)
	}

	// upload paralel dengan nama sama; O_EXCL yang kalah harus lanjut
	// ke suffix berikutnya, bukan error
	const n = 8
	paths := make(chan string, n)
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path, _, err := in.Save("sample.bin", strings.NewReader("x"))
			if err != nil {
				errs <- err
				return
			}
			paths <- path
		}()
	}
	wg.Wait()
	close(paths)
	close(errs)

	for err := range errs {
		t.Errorf("concurrent save failed: %v", err)
	}
	seen := map[string]bool{}
	for p := range paths {
		if seen[p] {
			t.Fatalf("duplicate path handed out: %s", p)
		}
		seen[p] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct files, got %d", n, len(seen))
	}
}

func TestSaveStripsDirectoryComponents(t *testing.T) {
	root := t.TempDir()
	in, err := New(root, 1<<20)
	if err != nil {
		t.Fatal(err)
	}

	path, _, err := in.Save("../../etc/passwd", strings.NewReader("nope"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("escaped root: %s", path)
	}
	if filepath.Base(path) != "passwd" {
		t.Fatalf("name %s", filepath.Base(path))
	}
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	root := t.TempDir()
	in, err := New(root, 10)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = in.Save("big.bin", strings.NewReader(strings.Repeat("a", 11)))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("want ErrTooLarge, got %v", err)
	}

	// file parsial harus ikut dibuang
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("partial upload left behind: %v", entries)
	}
}

func TestSaveAcceptsExactLimit(t *testing.T) {
	in, err := New(t.TempDir(), 10)
	if err != nil {
		t.Fatal(err)
	}
	_, size, err := in.Save("edge.bin", strings.NewReader(strings.Repeat("a", 10)))
	if err != nil {
		t.Fatal(err)
	}
	if size != 10 {
		t.Fatalf("size %d", size)
	}
}

func TestDiscardRemovesFile(t *testing.T) {
	in, err := New(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatal(err)
	}
	path, _, err := in.Save("tmp.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatal(err)
	}
	in.Discard(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file still present after discard")
	}
}
