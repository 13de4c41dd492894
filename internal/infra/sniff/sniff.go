package sniff

import (
	"archive/zip"
	"bytes"
	"io"
	"os"

	"github.com/bryanwahyu/fileprobe-sec/internal/domain/tools"
)

// Detector deteksi kind file dari magic bytes. Ekstensi dan MIME type
// dari client sengaja tidak pernah dilihat; input dianggap adversarial.
type Detector struct{}

func NewDetector() *Detector { return &Detector{} }

const headerLen = 512

// Detect baca header file dan kembalikan kind hasil sniffing.
func (d *Detector) Detect(path string) (tools.Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return tools.KindUnknown, err
	}
	defer f.Close()

	head, err := readHeader(f)
	if err != nil {
		return tools.KindUnknown, err
	}

	kind := sniffHeader(head)
	if kind == tools.KindArchive && hasPrefix(head, "PK\x03\x04") {
		// OOXML (docx/xlsx/pptx) adalah zip; lihat isinya
		if isOfficeZip(path) {
			return tools.KindDocument, nil
		}
	}
	return kind, nil
}

// readHeader isi buffer header sampai penuh atau EOF. Satu Read bisa saja
// pendek; magic di offset jauh (mis. ustar di 257) tidak boleh terlewat.
func readHeader(r io.Reader) ([]byte, error) {
	head := make([]byte, headerLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return head[:n], nil
}

func hasPrefix(b []byte, magic string) bool {
	return bytes.HasPrefix(b, []byte(magic))
}

func sniffHeader(b []byte) tools.Kind {
	switch {
	// images
	case hasPrefix(b, "\x89PNG\r\n\x1a\n"),
		hasPrefix(b, "\xff\xd8\xff"),
		hasPrefix(b, "GIF87a"), hasPrefix(b, "GIF89a"),
		hasPrefix(b, "BM"),
		hasPrefix(b, "II*\x00"), hasPrefix(b, "MM\x00*"):
		return tools.KindImage
	case hasPrefix(b, "RIFF") && len(b) >= 12 && string(b[8:12]) == "WEBP":
		return tools.KindImage

	// audio / video
	case hasPrefix(b, "RIFF") && len(b) >= 12 &&
		(string(b[8:12]) == "AVI " || string(b[8:12]) == "WAVE"):
		return tools.KindMedia
	case len(b) >= 12 && string(b[4:8]) == "ftyp":
		return tools.KindMedia
	case hasPrefix(b, "\x1aE\xdf\xa3"): // matroska/webm
		return tools.KindMedia
	case hasPrefix(b, "OggS"), hasPrefix(b, "fLaC"), hasPrefix(b, "ID3"):
		return tools.KindMedia
	case len(b) >= 2 && b[0] == 0xff && (b[1] == 0xfb || b[1] == 0xf3 || b[1] == 0xf2):
		return tools.KindMedia

	// documents
	case hasPrefix(b, "%PDF-"):
		return tools.KindDocument
	case hasPrefix(b, "\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1"): // legacy OLE (doc/xls)
		return tools.KindDocument

	// network captures
	case hasPrefix(b, "\xd4\xc3\xb2\xa1"), hasPrefix(b, "\xa1\xb2\xc3\xd4"),
		hasPrefix(b, "\x4d\x3c\xb2\xa1"), hasPrefix(b, "\xa1\xb2\x3c\x4d"),
		hasPrefix(b, "\x0a\x0d\x0d\x0a"):
		return tools.KindCapture

	// executables
	case hasPrefix(b, "\x7fELF"), hasPrefix(b, "MZ"),
		hasPrefix(b, "\xfe\xed\xfa\xce"), hasPrefix(b, "\xfe\xed\xfa\xcf"),
		hasPrefix(b, "\xcf\xfa\xed\xfe"), hasPrefix(b, "\xca\xfe\xba\xbe"):
		return tools.KindBinary

	// archives
	case hasPrefix(b, "PK\x03\x04"), hasPrefix(b, "PK\x05\x06"),
		hasPrefix(b, "\x1f\x8b"),
		hasPrefix(b, "7z\xbc\xaf\x27\x1c"),
		hasPrefix(b, "Rar!\x1a\x07"),
		hasPrefix(b, "BZh"),
		hasPrefix(b, "\xfd7zXZ\x00"):
		return tools.KindArchive
	case len(b) > 262 && string(b[257:262]) == "ustar":
		return tools.KindArchive
	}

	if looksTextual(b) {
		return tools.KindText
	}
	return tools.KindUnknown
}

// looksTextual header hampir seluruhnya printable → text
func looksTextual(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	printable := 0
	for _, c := range b {
		if c == '\n' || c == '\r' || c == '\t' || (c >= 0x20 && c < 0x7f) {
			printable++
		} else if c == 0 {
			return false
		}
	}
	return printable*100/len(b) >= 95
}

// isOfficeZip true kalau zip berisi [Content_Types].xml (OOXML)
func isOfficeZip(path string) bool {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == "[Content_Types].xml" {
			return true
		}
	}
	return false
}
