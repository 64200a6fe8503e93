// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes PictNote upload tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/pictnote/internal/ledger"
	"github.com/starford/pictnote/internal/storage"
	"github.com/starford/pictnote/internal/uploader"
)

// Uploader uploads one image file.
type Uploader interface {
	UploadFile(ctx context.Context, path string) (*uploader.Result, error)
}

// Server wraps the MCP server with PictNote tools.
type Server struct {
	mcp    *server.MCPServer
	up     Uploader
	inbox  storage.Provider
	ledger ledger.Store
}

// New creates a new MCP server with all tools registered. Paths given to
// the tools are relative to the inbox root.
func New(up Uploader, inbox storage.Provider, l ledger.Store, version string) *Server {
	s := &Server{up: up, inbox: inbox, ledger: l}

	s.mcp = server.NewMCPServer(
		"PictNote",
		version,
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("upload_image",
		mcp.WithDescription("Upload an image file from the inbox as a new Evernote note. "+
			"The note title and dates come from the image's EXIF data or file times."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the inbox (e.g. trip/IMG_0001.jpg)")),
	), s.uploadImage)

	s.mcp.AddTool(mcp.NewTool("upload_image_data",
		mcp.WithDescription("Upload an image given as a base64 data URI (data:image/jpeg;base64,...)."),
		mcp.WithString("data", mcp.Required(), mcp.Description("Base64 data URI of the image")),
		mcp.WithString("filename", mcp.Description("Optional file name stored with the attachment")),
	), s.uploadImageData)

	s.mcp.AddTool(mcp.NewTool("list_inbox",
		mcp.WithDescription("List image files waiting in the inbox."),
		mcp.WithString("folder", mcp.Description("Optional folder to list (empty for all)")),
	), s.listInbox)

	s.mcp.AddTool(mcp.NewTool("recent_uploads",
		mcp.WithDescription("List the most recent successful uploads, newest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries (default 20)")),
	), s.recentUploads)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type uploadResult struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	NoteGUID string `json:"noteGuid,omitempty"`
	Skipped  bool   `json:"skipped"`
}

func (s *Server) uploadImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	abs, err := s.inbox.Resolve(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !storage.IsImage(abs) {
		return mcp.NewToolResultError(fmt.Sprintf("not an image: %s", path)), nil
	}
	return s.upload(ctx, path, abs)
}

func (s *Server) upload(ctx context.Context, display, abs string) (*mcp.CallToolResult, error) {
	res, err := s.up.UploadFile(ctx, abs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := uploadResult{Path: display, Title: res.Title, Skipped: res.Skipped}
	if res.Note != nil {
		out.NoteGUID = res.Note.GUID
	}
	data, _ := json.MarshalIndent(out, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listInbox(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := req.GetString("folder", "")
	files, err := s.inbox.List(folder)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("inbox is empty"), nil
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) recentUploads(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.ledger == nil {
		return mcp.NewToolResultError("upload ledger is disabled"), nil
	}
	limit := req.GetInt("limit", 20)
	entries, err := s.ledger.Recent(limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("no uploads recorded"), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
