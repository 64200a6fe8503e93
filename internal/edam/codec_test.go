package edam

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/apache/thrift/lib/go/thrift"
)

func newProto() (*thrift.TMemoryBuffer, thrift.TProtocol) {
	buf := thrift.NewTMemoryBuffer()
	return buf, thrift.NewTBinaryProtocolConf(buf, &thrift.TConfiguration{})
}

func TestNoteRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, p := newProto()

	in := &Note{
		Title:        Ptr("2024-05-01(Wed) 10:00:00 JST"),
		Content:      Ptr("<en-note/>"),
		Created:      Ptr(int64(1714525200000)),
		Updated:      Ptr(int64(1714525260000)),
		NotebookGUID: Ptr("nb-1"),
		TagGUIDs:     []string{"t-1", "t-2"},
		Resources: []*Resource{{
			Mime: Ptr("image/jpeg"),
			Data: &Data{
				BodyHash: []byte{0xde, 0xad},
				Size:     Ptr(int32(3)),
				Body:     []byte("abc"),
			},
			Attributes: &ResourceAttributes{FileName: Ptr("a.jpg")},
		}},
		Attributes: &NoteAttributes{
			Latitude:  Ptr(35.5),
			Longitude: Ptr(139.7),
		},
	}
	if err := in.Write(ctx, p); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var out Note
	if err := out.Read(ctx, p); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if Deref(out.Title) != Deref(in.Title) {
		t.Errorf("title = %q", Deref(out.Title))
	}
	if Deref(out.Created) != 1714525200000 || Deref(out.Updated) != 1714525260000 {
		t.Errorf("dates = %v/%v", Deref(out.Created), Deref(out.Updated))
	}
	if Deref(out.NotebookGUID) != "nb-1" {
		t.Errorf("notebook = %q", Deref(out.NotebookGUID))
	}
	if len(out.TagGUIDs) != 2 || out.TagGUIDs[1] != "t-2" {
		t.Errorf("tags = %v", out.TagGUIDs)
	}
	if len(out.Resources) != 1 {
		t.Fatalf("resources = %d", len(out.Resources))
	}
	r := out.Resources[0]
	if !bytes.Equal(r.Data.Body, []byte("abc")) || Deref(r.Data.Size) != 3 {
		t.Errorf("data = %+v", r.Data)
	}
	if Deref(r.Attributes.FileName) != "a.jpg" {
		t.Errorf("fileName = %q", Deref(r.Attributes.FileName))
	}
	if out.Attributes == nil || Deref(out.Attributes.Latitude) != 35.5 {
		t.Errorf("attributes = %+v", out.Attributes)
	}
	if out.Attributes.Altitude != nil {
		t.Errorf("altitude should be unset, got %v", *out.Attributes.Altitude)
	}
	if out.GUID != nil {
		t.Errorf("guid should be unset")
	}
}

func TestReadSkipsUnknownFields(t *testing.T) {
	ctx := context.Background()
	_, p := newProto()

	err := writeStruct(ctx, p, "Notebook", func(w *structWriter) {
		w.String("guid", 1, Ptr("nb-1"))
		w.StringList("future", 40, []string{"x", "y"})
		w.I64("serviceCreated", 41, Ptr(int64(7)))
		w.String("name", 2, Ptr("Photos"))
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	var nb Notebook
	if err := nb.Read(ctx, p); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if Deref(nb.GUID) != "nb-1" || Deref(nb.Name) != "Photos" {
		t.Errorf("notebook = %q/%q", Deref(nb.GUID), Deref(nb.Name))
	}
}

func TestResultFaults(t *testing.T) {
	ctx := context.Background()
	_, p := newProto()

	in := &CreateNoteResult{}
	in.SetErr(&UserException{ErrorCode: ErrorBadDataFormat, Parameter: Ptr("Note.title")})
	if err := in.Write(ctx, p); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var out CreateNoteResult
	if err := out.Read(ctx, p); err != nil {
		t.Fatalf("Read: %v", err)
	}
	var ue *UserException
	if !errors.As(out.Err(), &ue) {
		t.Fatalf("Err() = %v, want *UserException", out.Err())
	}
	if ue.ErrorCode != ErrorBadDataFormat || Deref(ue.Parameter) != "Note.title" {
		t.Errorf("exception = %+v", ue)
	}
	if out.Success != nil {
		t.Error("success should be unset")
	}
}

func TestSetErrRejectsForeignErrors(t *testing.T) {
	var f Faults
	if f.SetErr(errors.New("boom")) {
		t.Error("SetErr accepted a plain error")
	}
	if f.Err() != nil {
		t.Errorf("Err() = %v", f.Err())
	}
}

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrorInvalidAuth, "INVALID_AUTH"},
		{ErrorRateLimitReached, "RATE_LIMIT_REACHED"},
		{ErrorCode(99), "ErrorCode(99)"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestExceptionMessages(t *testing.T) {
	ue := &UserException{ErrorCode: ErrorInvalidAuth, Parameter: Ptr("password")}
	if got := ue.Error(); got != "EDAMUserException: INVALID_AUTH(password)" {
		t.Errorf("user exception = %q", got)
	}
	se := &SystemException{ErrorCode: ErrorRateLimitReached, RateLimitDuration: Ptr(int32(30))}
	if got := se.Error(); got != "EDAMSystemException: RATE_LIMIT_REACHED (retry after 30s)" {
		t.Errorf("system exception = %q", got)
	}
}

func TestEndpointURLs(t *testing.T) {
	if got := UserStoreURL("https://sandbox.evernote.com/"); got != "https://sandbox.evernote.com/edam/user" {
		t.Errorf("UserStoreURL = %q", got)
	}
	if got := NoteStoreURL("https://sandbox.evernote.com", "s1"); got != "https://sandbox.evernote.com/edam/note/s1" {
		t.Errorf("NoteStoreURL = %q", got)
	}
}
