package upload

import "bytes"

const (
	MimePDF  = "application/pdf"
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeGIF  = "image/gif"
	MimeWEBP = "image/webp"
	MimeText = "text/plain"
	MimeZIP  = "application/zip"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// signature matches a fixed byte pattern at the start of a file. A nil mask
// is an exact prefix match; otherwise content[i]&mask[i] must equal
// pattern[i], which lets WEBP skip the RIFF chunk-size bytes.
type signature struct {
	mime    string
	pattern []byte
	mask    []byte
}

// signatures is checked in order; the first match wins. The three ZIP
// signatures map to one bucket because the OOXML formats share a ZIP
// container and the leading bytes cannot tell them apart.
var signatures = []signature{
	{mime: MimePDF, pattern: []byte{0x25, 0x50, 0x44, 0x46}},
	{mime: MimeJPEG, pattern: []byte{0xFF, 0xD8, 0xFF}},
	{mime: MimePNG, pattern: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{mime: MimeGIF, pattern: []byte("GIF87a")},
	{mime: MimeGIF, pattern: []byte("GIF89a")},
	{
		mime:    MimeWEBP,
		pattern: []byte{'R', 'I', 'F', 'F', 0, 0, 0, 0, 'W', 'E', 'B', 'P'},
		mask:    []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF},
	},
	{mime: MimeText, pattern: []byte{0xEF, 0xBB, 0xBF}},
	{mime: MimeText, pattern: []byte{0xFF, 0xFE}},
	{mime: MimeText, pattern: []byte{0xFE, 0xFF}},
	{mime: MimeZIP, pattern: []byte{0x50, 0x4B, 0x03, 0x04}},
	{mime: MimeZIP, pattern: []byte{0x50, 0x4B, 0x05, 0x06}},
	{mime: MimeZIP, pattern: []byte{0x50, 0x4B, 0x07, 0x08}},
}

// zipContainerTypes are the declared types satisfied by ZIP container bytes.
var zipContainerTypes = []string{MimeZIP, MimeDOCX, MimeXLSX, MimePPTX}

func (s signature) match(content []byte) bool {
	if len(content) < len(s.pattern) {
		return false
	}
	if s.mask == nil {
		return bytes.HasPrefix(content, s.pattern)
	}
	for i := range s.pattern {
		if content[i]&s.mask[i] != s.pattern[i] {
			return false
		}
	}
	return true
}

// sniffContentType returns the MIME type recognized from the leading bytes,
// or "" when no signature matches.
func sniffContentType(content []byte) string {
	for _, sig := range signatures {
		if sig.match(content) {
			return sig.mime
		}
	}
	return ""
}

func isZipContainerType(mime string) bool {
	for _, t := range zipContainerTypes {
		if t == mime {
			return true
		}
	}
	return false
}
