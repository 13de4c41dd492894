package intake

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Intake menerima stream upload dan menaruhnya di bawah scratch root.
// Intake yang memiliki file di disk; orchestrator hanya pinjam path-nya.
type Intake struct {
	root     string
	maxBytes int64
}

func New(root string, maxBytes int64) (*Intake, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Intake{root: root, maxBytes: maxBytes}, nil
}

// ErrTooLarge upload melewati batas byte yang dideklarasikan config
var ErrTooLarge = fmt.Errorf("upload too large")

// Save tulis stream ke file baru di scratch root. Nama yang sudah ada
// dapat suffix _1, _2, ... seperti perilaku aslinya.
func (in *Intake) Save(name string, r io.Reader) (path string, size int64, err error) {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	// O_EXCL yang memutuskan nama, bukan stat duluan: dua upload paralel
	// dengan nama sama tidak boleh saling jegal, yang kalah lanjut ke
	// suffix berikutnya
	var f *os.File
	dest := filepath.Join(in.root, base)
	for i := 1; ; i++ {
		f, err = os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", 0, err
		}
		dest = filepath.Join(in.root, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
	defer f.Close()

	limit := in.maxBytes
	if limit <= 0 {
		limit = 1 << 40
	}
	size, err = io.Copy(f, io.LimitReader(r, limit+1))
	if err != nil {
		os.Remove(dest)
		return "", 0, err
	}
	if size > limit {
		os.Remove(dest)
		return "", 0, ErrTooLarge
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		abs = dest
	}
	return abs, size, nil
}

// Discard buang file upload setelah analisis selesai
func (in *Intake) Discard(path string) {
	if path != "" {
		os.Remove(path)
	}
}

// Root lokasi scratch root
func (in *Intake) Root() string { return in.root }

// MaxBytes batas ukuran upload dari config
func (in *Intake) MaxBytes() int64 { return in.maxBytes }
