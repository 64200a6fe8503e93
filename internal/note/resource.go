// Package note builds ENML note documents with attached binary resources.
package note

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/starford/pictnote/internal/checksum"
)

// Resource is a content-addressed attachment. Hash is the lowercase hex MD5
// of Body and is what inline <en-media> fragments refer to.
type Resource struct {
	MIME     string
	Hash     string
	Size     int
	Body     []byte
	FileName string
}

// Encodable is an attachment variant that contributes both a resource and
// the inline fragment referencing it.
type Encodable interface {
	// Content returns the ENML fragment placed in the note body.
	Content() string
	// Resource returns the attachment carried by the note.
	Resource() *Resource
}

// ImageResource is an image attachment rendered inline with <en-media>.
type ImageResource struct {
	resource Resource
	content  string
}

var _ Encodable = (*ImageResource)(nil)

// NewImageResource wraps data as an image resource. data is owned by the
// resource afterwards.
func NewImageResource(data []byte, mimeType, fileName string) *ImageResource {
	hash := checksum.Sum(data)
	return &ImageResource{
		resource: Resource{
			MIME:     mimeType,
			Hash:     hash,
			Size:     len(data),
			Body:     data,
			FileName: fileName,
		},
		content: mediaFragment(mimeType, hash),
	}
}

// LoadImageResource reads the whole file at path into an image resource.
func LoadImageResource(path, mimeType, fileName string) (*ImageResource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("note: read resource %s: %w", path, err)
	}
	return NewImageResource(data, mimeType, fileName), nil
}

// Content returns `<en-media type="..." hash="..."/><br/>`.
func (r *ImageResource) Content() string { return r.content }

// Resource returns the attachment descriptor.
func (r *ImageResource) Resource() *Resource { return &r.resource }

func mediaFragment(mimeType, hash string) string {
	var b strings.Builder
	b.WriteString(`<en-media type="`)
	escapeAttr(&b, mimeType)
	b.WriteString(`" hash="`)
	escapeAttr(&b, hash)
	b.WriteString(`"/><br/>`)
	return b.String()
}

func escapeAttr(b *strings.Builder, s string) {
	// strings.Builder never returns a write error.
	_ = xml.EscapeText(b, []byte(s))
}
