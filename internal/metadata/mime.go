package metadata

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MIMEJPEG is the only type whose embedded metadata is parsed.
const MIMEJPEG = "image/jpeg"

// DetectMIME resolves the MIME type from the file extension and falls back
// to sniffing the content when the extension is unknown.
func DetectMIME(path string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); t != "" {
		return stripParams(t)
	}
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return stripParams(m.String())
}

func stripParams(t string) string {
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return strings.TrimSpace(strings.SplitN(t, ";", 2)[0])
}
