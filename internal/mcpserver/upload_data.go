package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	maxImageSize = 20 << 20 // 20 MB
	// stagingDir is a hidden inbox folder; watchers and listings skip it.
	stagingDir = ".staging"
)

var (
	mimeToExt = map[string]string{
		"image/png":  ".png",
		"image/jpeg": ".jpg",
		"image/gif":  ".gif",
		"image/webp": ".webp",
		"image/heic": ".heic",
	}

	safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// uploadImageData decodes a data URI into a staged inbox file, uploads it
// and removes the staged copy.
func (s *Server) uploadImageData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := req.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, ext, err := decodeDataURI(uri)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxImageSize {
		return mcp.NewToolResultError(fmt.Sprintf("image too large: %d bytes (max %d)", len(data), maxImageSize)), nil
	}
	if err := validateContent(data, ext); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	name := sanitizeFilename(req.GetString("filename", ""), ext)
	rel := filepath.Join(stagingDir, uuid.NewString(), name)
	if err := s.inbox.Write(rel, data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to stage image: %v", err)), nil
	}
	abs, err := s.inbox.Resolve(rel)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer os.RemoveAll(filepath.Dir(abs))

	return s.upload(ctx, name, abs)
}

func decodeDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("invalid data URI: missing data: prefix")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("invalid data URI: missing comma separator")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 data: %w", err)
		}
	}

	mime := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	ext := mimeToExt[mime]
	if ext == "" {
		return nil, "", fmt.Errorf("unsupported MIME type in data URI: %s", mime)
	}
	return data, ext, nil
}

// sanitizeFilename strips path separators and unsafe characters and makes
// sure the name carries ext.
func sanitizeFilename(name, ext string) string {
	name = filepath.Base(name)
	name = safeFilenameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." || strings.HasPrefix(name, ".") {
		name = uuid.NewString() + ext
	}
	if filepath.Ext(name) == "" {
		name += ext
	}
	return name
}

// validateContent verifies the decoded bytes are the declared image type.
func validateContent(data []byte, ext string) error {
	detected := mimetype.Detect(data)
	if got := mimeToExt[detected.String()]; got != ext {
		return fmt.Errorf("content does not match declared type %s (detected: %s)", ext, detected.String())
	}
	return nil
}
