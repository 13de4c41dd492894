package tools

import "time"

const (
	// DefaultTimeout batas wall-clock per tool
	DefaultTimeout = 25 * time.Second
	// DefaultMaxOutputBytes batas capture stdout/stderr per tool
	DefaultMaxOutputBytes int64 = 1 << 20
	// DefaultMaxMemoryMB ceiling memori best-effort per tool
	DefaultMaxMemoryMB = 512
	// DefaultMaxCPUSeconds ceiling CPU best-effort per tool
	DefaultMaxCPUSeconds = 30
)

// DefaultSpecs battery analyzer bawaan kalau config tidak mendeklarasikan
// tools sendiri. Urutan deklarasi = urutan section di report.
func DefaultSpecs() []ToolSpec {
	d := func(name string, kinds []Kind, argv ...string) ToolSpec {
		return ToolSpec{
			Name:           name,
			Kinds:          kinds,
			Argv:           argv,
			Timeout:        DefaultTimeout,
			MaxOutputBytes: DefaultMaxOutputBytes,
			MaxMemoryMB:    DefaultMaxMemoryMB,
			MaxCPUSeconds:  DefaultMaxCPUSeconds,
		}
	}

	image := []Kind{KindImage}
	media := []Kind{KindMedia}
	binary := []Kind{KindBinary}
	document := []Kind{KindDocument}
	capture := []Kind{KindCapture}
	// file + strings jalan untuk hampir semua kind, termasuk unknown
	broad := []Kind{KindImage, KindArchive, KindBinary, KindText, KindUnknown}

	specs := []ToolSpec{
		// file(1) exit 0 walau tipe tidak dikenal
		d("file", AllKinds, "file", "-k", "{file}"),
		d("strings", broad, "strings", "-a", "{file}"),

		// Images
		d("exiftool", image, "exiftool", "{file}"),
		d("exiv2", image, "exiv2", "{file}"),
		d("identify", image, "identify", "-verbose", "{file}"),
		d("mat2", image, "mat2", "--show", "{file}"),
		d("binwalk", []Kind{KindImage, KindArchive, KindBinary, KindUnknown},
			"binwalk", "{file}"),

		// Video / audio
		d("ffprobe", media, "ffprobe", "-v", "error", "-show_format", "-show_streams",
			"-print_format", "json", "{file}"),
		d("mediainfo", media, "mediainfo", "{file}"),

		// Binaries / firmware
		d("readelf", binary, "readelf", "-h", "{file}"),
		d("objdump", binary, "objdump", "-f", "{file}"),
		d("rabin2", binary, "rabin2", "-I", "{file}"),

		// Documents
		d("pdfinfo", document, "pdfinfo", "{file}"),
		d("pdfimages", document, "pdfimages", "-list", "{file}"),
		d("docx2txt", document, "docx2txt", "{file}", "-"),
		d("qpdf", document, "qpdf", "--show-encryption", "{file}"),
		d("mutool", document, "mutool", "info", "{file}"),

		// Network captures
		d("tshark", capture, "tshark", "-r", "{file}"),
	}

	// exiv2 exit 1 saat file tanpa metadata; itu bukan kegagalan
	for i := range specs {
		switch specs[i].Name {
		case "exiv2":
			specs[i].NoFindingCodes = []int{1}
		case "binwalk":
			specs[i].NoFindingCodes = []int{1}
		case "qpdf":
			// qpdf exit 2 untuk PDF tanpa enkripsi pada versi lama
			specs[i].NoFindingCodes = []int{2}
		}
	}

	return specs
}
