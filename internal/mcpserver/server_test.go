package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/pictnote/internal/ledger"
	"github.com/starford/pictnote/internal/models"
	"github.com/starford/pictnote/internal/storage"
	"github.com/starford/pictnote/internal/testutil"
	"github.com/starford/pictnote/internal/uploader"
)

type fakeUploader struct {
	paths []string
	// present records whether each file existed when it was uploaded.
	present []bool
}

func (f *fakeUploader) UploadFile(_ context.Context, path string) (*uploader.Result, error) {
	_, err := os.Stat(path)
	f.paths = append(f.paths, path)
	f.present = append(f.present, err == nil)
	return &uploader.Result{
		Path:  path,
		Title: "title-" + filepath.Base(path),
		Note:  &models.NoteRecord{GUID: "note-1"},
	}, nil
}

func testServer(t *testing.T) (*Server, *storage.FS, *fakeUploader, *ledger.DB) {
	t.Helper()
	inbox, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	db := testutil.TestLedger(t)
	up := &fakeUploader{}
	return New(up, inbox, db, "test"), inbox, up, db
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "upload_image":
		result, err = srv.uploadImage(ctx, req)
	case "upload_image_data":
		result, err = srv.uploadImageData(ctx, req)
	case "list_inbox":
		result, err = srv.listInbox(ctx, req)
	case "recent_uploads":
		result, err = srv.recentUploads(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestUploadImage(t *testing.T) {
	srv, inbox, up, _ := testServer(t)
	if err := inbox.Write("trip/a.jpg", []byte{0xff, 0xd8, 0xff, 0xd9}); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "upload_image", map[string]interface{}{"path": "trip/a.jpg"})
	if r.IsError {
		t.Fatalf("upload failed: %s", resultText(r))
	}
	var out uploadResult
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if out.NoteGUID != "note-1" || out.Path != "trip/a.jpg" {
		t.Errorf("result = %+v", out)
	}
	if len(up.paths) != 1 || up.paths[0] != filepath.Join(inbox.Root(), "trip", "a.jpg") {
		t.Errorf("uploaded = %v", up.paths)
	}
}

func TestUploadImageRejectsTraversal(t *testing.T) {
	srv, _, up, _ := testServer(t)
	for _, p := range []string{"../x.jpg", "/etc/passwd", "notes.txt"} {
		r := callTool(t, srv, "upload_image", map[string]interface{}{"path": p})
		if !r.IsError {
			t.Errorf("path %q accepted", p)
		}
	}
	if len(up.paths) != 0 {
		t.Errorf("uploader called: %v", up.paths)
	}
}

func TestUploadImageData(t *testing.T) {
	srv, inbox, up, _ := testServer(t)
	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0xff, 0xd9}
	uri := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)

	r := callTool(t, srv, "upload_image_data", map[string]interface{}{
		"data":     uri,
		"filename": "../My Photo",
	})
	if r.IsError {
		t.Fatalf("upload failed: %s", resultText(r))
	}
	if len(up.paths) != 1 || !up.present[0] {
		t.Fatalf("uploaded = %v present = %v", up.paths, up.present)
	}
	if filepath.Base(up.paths[0]) != "My_Photo.jpg" {
		t.Errorf("staged name = %q", filepath.Base(up.paths[0]))
	}
	if _, err := os.Stat(up.paths[0]); !os.IsNotExist(err) {
		t.Errorf("staged file left behind: %v", err)
	}
	files, _ := inbox.List("")
	if len(files) != 0 {
		t.Errorf("inbox listing shows staged files: %+v", files)
	}
}

func TestUploadImageDataRejectsMismatch(t *testing.T) {
	srv, _, up, _ := testServer(t)
	cases := []string{
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff, 0xd9}),
		"data:text/plain;base64,aGVsbG8=",
		"data:image/jpeg,rawbytes",
		"not-a-uri",
	}
	for _, uri := range cases {
		r := callTool(t, srv, "upload_image_data", map[string]interface{}{"data": uri})
		if !r.IsError {
			t.Errorf("data %q accepted", uri)
		}
	}
	if len(up.paths) != 0 {
		t.Errorf("uploader called: %v", up.paths)
	}
}

func TestListInbox(t *testing.T) {
	srv, inbox, _, _ := testServer(t)

	r := callTool(t, srv, "list_inbox", map[string]interface{}{})
	if resultText(r) != "inbox is empty" {
		t.Errorf("empty inbox = %q", resultText(r))
	}

	_ = inbox.Write("a.jpg", []byte("a"))
	_ = inbox.Write("sub/b.png", []byte("b"))
	r = callTool(t, srv, "list_inbox", map[string]interface{}{})
	lines := strings.Split(resultText(r), "\n")
	if len(lines) != 2 || lines[0] != "a.jpg" {
		t.Errorf("list = %q", resultText(r))
	}
}

func TestRecentUploads(t *testing.T) {
	srv, _, _, db := testServer(t)

	r := callTool(t, srv, "recent_uploads", map[string]interface{}{})
	if resultText(r) != "no uploads recorded" {
		t.Errorf("empty ledger = %q", resultText(r))
	}

	_ = db.Record(ledger.Entry{RunID: "r", Path: "a.jpg", Checksum: "abc", NoteGUID: "n-1", Title: "t"})
	r = callTool(t, srv, "recent_uploads", map[string]interface{}{"limit": 5})
	var entries []ledger.Entry
	if err := json.Unmarshal([]byte(resultText(r)), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].NoteGUID != "n-1" {
		t.Errorf("entries = %+v", entries)
	}
}
