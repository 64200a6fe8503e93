package edam

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/thrift/lib/go/thrift"
)

// wireField is one field written straight onto the protocol with its EDAM
// field id, bypassing the struct codecs under test.
type wireField struct {
	id  int16
	typ thrift.TType
	put func(ctx context.Context, p thrift.TProtocol) error
}

func strField(id int16, v string) wireField {
	return wireField{id, thrift.STRING, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteString(ctx, v)
	}}
}

func binField(id int16, v []byte) wireField {
	return wireField{id, thrift.STRING, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteBinary(ctx, v)
	}}
}

func boolField(id int16, v bool) wireField {
	return wireField{id, thrift.BOOL, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteBool(ctx, v)
	}}
}

func i16Field(id int16, v int16) wireField {
	return wireField{id, thrift.I16, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteI16(ctx, v)
	}}
}

func i32Field(id int16, v int32) wireField {
	return wireField{id, thrift.I32, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteI32(ctx, v)
	}}
}

func i64Field(id int16, v int64) wireField {
	return wireField{id, thrift.I64, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteI64(ctx, v)
	}}
}

func doubleField(id int16, v float64) wireField {
	return wireField{id, thrift.DOUBLE, func(ctx context.Context, p thrift.TProtocol) error {
		return p.WriteDouble(ctx, v)
	}}
}

func stringListField(id int16, vs ...string) wireField {
	return wireField{id, thrift.LIST, func(ctx context.Context, p thrift.TProtocol) error {
		if err := p.WriteListBegin(ctx, thrift.STRING, len(vs)); err != nil {
			return err
		}
		for _, v := range vs {
			if err := p.WriteString(ctx, v); err != nil {
				return err
			}
		}
		return p.WriteListEnd(ctx)
	}}
}

func structField(id int16, fields ...wireField) wireField {
	return wireField{id, thrift.STRUCT, func(ctx context.Context, p thrift.TProtocol) error {
		return putStruct(ctx, p, fields)
	}}
}

func structListField(id int16, elems ...[]wireField) wireField {
	return wireField{id, thrift.LIST, func(ctx context.Context, p thrift.TProtocol) error {
		if err := p.WriteListBegin(ctx, thrift.STRUCT, len(elems)); err != nil {
			return err
		}
		for _, fields := range elems {
			if err := putStruct(ctx, p, fields); err != nil {
				return err
			}
		}
		return p.WriteListEnd(ctx)
	}}
}

func putStruct(ctx context.Context, p thrift.TProtocol, fields []wireField) error {
	if err := p.WriteStructBegin(ctx, "wire"); err != nil {
		return err
	}
	for _, f := range fields {
		if err := p.WriteFieldBegin(ctx, "", f.typ, f.id); err != nil {
			return err
		}
		if err := f.put(ctx, p); err != nil {
			return err
		}
		if err := p.WriteFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := p.WriteFieldStop(ctx); err != nil {
		return err
	}
	return p.WriteStructEnd(ctx)
}

// readWire encodes fields as one struct and decodes it into s.
func readWire(t *testing.T, s thrift.TStruct, fields ...wireField) {
	t.Helper()
	ctx := context.Background()
	_, p := newProto()
	if err := putStruct(ctx, p, fields); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := s.Read(ctx, p); err != nil {
		t.Fatalf("Read: %v", err)
	}
}

// writtenFields writes s and returns the id and type of each top-level field.
func writtenFields(t *testing.T, s thrift.TStruct) map[int16]thrift.TType {
	t.Helper()
	ctx := context.Background()
	_, p := newProto()
	if err := s.Write(ctx, p); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := p.ReadStructBegin(ctx); err != nil {
		t.Fatal(err)
	}
	out := map[int16]thrift.TType{}
	for {
		_, typ, id, err := p.ReadFieldBegin(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if typ == thrift.STOP {
			break
		}
		out[id] = typ
		if err := p.Skip(ctx, typ); err != nil {
			t.Fatal(err)
		}
		if err := p.ReadFieldEnd(ctx); err != nil {
			t.Fatal(err)
		}
	}
	return out
}

func TestUserShardIDBytes(t *testing.T) {
	buf, p := newProto()
	if err := (&User{ShardID: Ptr("s1")}).Write(context.Background(), p); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// STRING field 14, length 2, "s1", STOP.
	want := []byte{0x0b, 0x00, 0x0e, 0x00, 0x00, 0x00, 0x02, 's', '1', 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("bytes = % x, want % x", buf.Bytes(), want)
	}
}

func TestUserReadsServiceLayout(t *testing.T) {
	var u User
	readWire(t, &u,
		i32Field(1, 7),
		strField(2, "alice"),
		strField(3, "alice@example.com"),
		strField(4, "Alice"),
		strField(6, "Asia/Tokyo"),
		i32Field(7, 1),
		i64Field(9, 1300000000000),
		boolField(13, true),
		strField(14, "s1"),
		structField(15, strField(1, "Tokyo"), i64Field(4, 0)),
		structField(16),
	)
	if Deref(u.ID) != 7 || Deref(u.Username) != "alice" || Deref(u.Email) != "alice@example.com" || Deref(u.Name) != "Alice" {
		t.Errorf("user = id %d username %q email %q name %q", Deref(u.ID), Deref(u.Username), Deref(u.Email), Deref(u.Name))
	}
	if !Deref(u.Active) {
		t.Error("active not read")
	}
	if Deref(u.ShardID) != "s1" {
		t.Errorf("shardId = %q, want s1", Deref(u.ShardID))
	}
}

func TestAuthenticationResultReadsServiceLayout(t *testing.T) {
	var r AuthenticationResult
	readWire(t, &r,
		i64Field(1, 1714525200000),
		strField(2, "S=s1:U=1:token"),
		i64Field(3, 1714611600000),
		structField(4, strField(2, "alice"), boolField(13, true), strField(14, "s1")),
		strField(6, "https://www.evernote.com/shard/s1/notestore"),
	)
	if r.CurrentTime != 1714525200000 || r.Expiration != 1714611600000 {
		t.Errorf("times = %d/%d", r.CurrentTime, r.Expiration)
	}
	if r.AuthenticationToken != "S=s1:U=1:token" {
		t.Errorf("token = %q", r.AuthenticationToken)
	}
	if r.User == nil || Deref(r.User.ShardID) != "s1" || Deref(r.User.Username) != "alice" {
		t.Fatalf("user = %+v", r.User)
	}
}

func TestNoteReadsServiceLayout(t *testing.T) {
	hash := []byte{0x90, 0x01, 0x50, 0x98, 0x3c, 0xd2, 0x4f, 0xb0, 0xd6, 0x96, 0x3f, 0x7d, 0x28, 0xe1, 0x7f, 0x72}
	var n Note
	readWire(t, &n,
		strField(1, "note-1"),
		strField(2, "2024-05-01(Wed) 10:00:00 JST"),
		strField(3, "<en-note/>"),
		binField(4, []byte{0x01, 0x02}),
		i32Field(5, 10),
		i64Field(6, 1714525200000),
		i64Field(7, 1714525260000),
		boolField(9, true),
		i32Field(10, 42),
		strField(11, "nb-1"),
		stringListField(12, "t-1", "t-2"),
		structListField(13, []wireField{
			strField(1, "res-1"),
			strField(2, "note-1"),
			structField(3, binField(1, hash), i32Field(2, 3), binField(3, []byte("abc"))),
			strField(4, "image/jpeg"),
			i16Field(5, 640),
			i16Field(6, 480),
			structField(11,
				strField(1, "https://example.com/a.jpg"),
				doubleField(3, 1.5),
				strField(10, "a.jpg"),
				boolField(11, true),
			),
		}),
		structField(14,
			i64Field(1, 1714525200000),
			doubleField(10, 35.6866),
			doubleField(11, 139.6919),
			doubleField(12, 40.5),
			strField(13, "alice"),
			strField(14, "mobile"),
			strField(15, "https://example.com"),
			strField(16, "pictnote"),
			i64Field(17, 0),
		),
		stringListField(15, "alpha"),
	)

	if Deref(n.GUID) != "note-1" || Deref(n.Title) != "2024-05-01(Wed) 10:00:00 JST" || Deref(n.Content) != "<en-note/>" {
		t.Errorf("note strings = %q %q %q", Deref(n.GUID), Deref(n.Title), Deref(n.Content))
	}
	if !bytes.Equal(n.ContentHash, []byte{0x01, 0x02}) || Deref(n.ContentLength) != 10 {
		t.Errorf("content hash/length = % x / %d", n.ContentHash, Deref(n.ContentLength))
	}
	if Deref(n.Created) != 1714525200000 || Deref(n.Updated) != 1714525260000 || !Deref(n.Active) {
		t.Errorf("created/updated/active = %d/%d/%v", Deref(n.Created), Deref(n.Updated), Deref(n.Active))
	}
	if Deref(n.NotebookGUID) != "nb-1" {
		t.Errorf("notebookGuid = %q", Deref(n.NotebookGUID))
	}
	if len(n.TagGUIDs) != 2 || n.TagGUIDs[0] != "t-1" || n.TagGUIDs[1] != "t-2" {
		t.Errorf("tagGuids = %v", n.TagGUIDs)
	}
	if len(n.TagNames) != 1 || n.TagNames[0] != "alpha" {
		t.Errorf("tagNames = %v", n.TagNames)
	}

	if len(n.Resources) != 1 {
		t.Fatalf("resources = %d", len(n.Resources))
	}
	r := n.Resources[0]
	if Deref(r.GUID) != "res-1" || Deref(r.NoteGUID) != "note-1" || Deref(r.Mime) != "image/jpeg" {
		t.Errorf("resource = guid %q note %q mime %q", Deref(r.GUID), Deref(r.NoteGUID), Deref(r.Mime))
	}
	if r.Data == nil {
		t.Fatal("resource data not read")
	}
	if !bytes.Equal(r.Data.BodyHash, hash) || Deref(r.Data.Size) != 3 || !bytes.Equal(r.Data.Body, []byte("abc")) {
		t.Errorf("data = %+v", r.Data)
	}
	if r.Attributes == nil {
		t.Fatal("resource attributes not read")
	}
	if Deref(r.Attributes.SourceURL) != "https://example.com/a.jpg" || Deref(r.Attributes.FileName) != "a.jpg" || !Deref(r.Attributes.Attachment) {
		t.Errorf("resource attributes = %q %q %v",
			Deref(r.Attributes.SourceURL), Deref(r.Attributes.FileName), Deref(r.Attributes.Attachment))
	}

	a := n.Attributes
	if a == nil {
		t.Fatal("note attributes not read")
	}
	if Deref(a.SubjectDate) != 1714525200000 {
		t.Errorf("subjectDate = %d", Deref(a.SubjectDate))
	}
	if Deref(a.Latitude) != 35.6866 || Deref(a.Longitude) != 139.6919 || Deref(a.Altitude) != 40.5 {
		t.Errorf("location = %v/%v/%v", Deref(a.Latitude), Deref(a.Longitude), Deref(a.Altitude))
	}
	if Deref(a.Author) != "alice" || Deref(a.Source) != "mobile" ||
		Deref(a.SourceURL) != "https://example.com" || Deref(a.SourceApplication) != "pictnote" {
		t.Errorf("attribute strings = %q %q %q %q",
			Deref(a.Author), Deref(a.Source), Deref(a.SourceURL), Deref(a.SourceApplication))
	}
}

func TestWriteUsesServiceFieldIDs(t *testing.T) {
	data := &Data{BodyHash: []byte{1}, Size: Ptr(int32(1)), Body: []byte{1}}
	resAttrs := &ResourceAttributes{SourceURL: Ptr("u"), FileName: Ptr("a.jpg"), Attachment: Ptr(false)}
	res := &Resource{GUID: Ptr("r"), NoteGUID: Ptr("n"), Data: data, Mime: Ptr("image/jpeg"), Attributes: resAttrs}
	noteAttrs := &NoteAttributes{
		SubjectDate:       Ptr(int64(1)),
		Latitude:          Ptr(1.0),
		Longitude:         Ptr(2.0),
		Altitude:          Ptr(3.0),
		Author:            Ptr("a"),
		Source:            Ptr("s"),
		SourceURL:         Ptr("u"),
		SourceApplication: Ptr("app"),
	}
	user := &User{ID: Ptr(int32(1)), Username: Ptr("u"), Email: Ptr("e"), Name: Ptr("n"), Active: Ptr(true), ShardID: Ptr("s1")}

	tests := []struct {
		name string
		s    thrift.TStruct
		want map[int16]thrift.TType
	}{
		{"Data", data, map[int16]thrift.TType{1: thrift.STRING, 2: thrift.I32, 3: thrift.STRING}},
		{"ResourceAttributes", resAttrs, map[int16]thrift.TType{1: thrift.STRING, 10: thrift.STRING, 11: thrift.BOOL}},
		{"Resource", res, map[int16]thrift.TType{
			1: thrift.STRING, 2: thrift.STRING, 3: thrift.STRUCT, 4: thrift.STRING, 11: thrift.STRUCT,
		}},
		{"NoteAttributes", noteAttrs, map[int16]thrift.TType{
			1: thrift.I64, 10: thrift.DOUBLE, 11: thrift.DOUBLE, 12: thrift.DOUBLE,
			13: thrift.STRING, 14: thrift.STRING, 15: thrift.STRING, 16: thrift.STRING,
		}},
		{"Note", &Note{
			GUID:          Ptr("n"),
			Title:         Ptr("t"),
			Content:       Ptr("<en-note/>"),
			ContentHash:   []byte{1},
			ContentLength: Ptr(int32(10)),
			Created:       Ptr(int64(1)),
			Updated:       Ptr(int64(2)),
			Active:        Ptr(true),
			NotebookGUID:  Ptr("nb"),
			TagGUIDs:      []string{"t"},
			Resources:     []*Resource{res},
			Attributes:    noteAttrs,
			TagNames:      []string{"x"},
		}, map[int16]thrift.TType{
			1: thrift.STRING, 2: thrift.STRING, 3: thrift.STRING, 4: thrift.STRING, 5: thrift.I32,
			6: thrift.I64, 7: thrift.I64, 9: thrift.BOOL, 11: thrift.STRING, 12: thrift.LIST,
			13: thrift.LIST, 14: thrift.STRUCT, 15: thrift.LIST,
		}},
		{"User", user, map[int16]thrift.TType{
			1: thrift.I32, 2: thrift.STRING, 3: thrift.STRING, 4: thrift.STRING, 13: thrift.BOOL, 14: thrift.STRING,
		}},
		{"AuthenticationResult", &AuthenticationResult{CurrentTime: 1, AuthenticationToken: "tok", Expiration: 2, User: user},
			map[int16]thrift.TType{1: thrift.I64, 2: thrift.STRING, 3: thrift.I64, 4: thrift.STRUCT}},
		{"CheckVersionArgs", &CheckVersionArgs{ClientName: "PictNote", EDAMVersionMajor: VersionMajor, EDAMVersionMinor: VersionMinor},
			map[int16]thrift.TType{1: thrift.STRING, 2: thrift.I16, 3: thrift.I16}},
		{"AuthenticateArgs", &AuthenticateArgs{Username: "u", Password: "p", ConsumerKey: "k", ConsumerSecret: "s"},
			map[int16]thrift.TType{1: thrift.STRING, 2: thrift.STRING, 3: thrift.STRING, 4: thrift.STRING}},
		{"CreateNoteArgs", &CreateNoteArgs{AuthenticationToken: "tok", Note: &Note{Title: Ptr("t")}},
			map[int16]thrift.TType{1: thrift.STRING, 2: thrift.STRUCT}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := writtenFields(t, tt.s)
			for id, typ := range tt.want {
				if g, ok := got[id]; !ok || g != typ {
					t.Errorf("field %d: got type %v (present %v), want %v", id, g, ok, typ)
				}
			}
			for id := range got {
				if _, ok := tt.want[id]; !ok {
					t.Errorf("unexpected field %d", id)
				}
			}
		})
	}
}
