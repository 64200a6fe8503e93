package edam

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// NoteStore method names.
const (
	MethodListNotebooks = "listNotebooks"
	MethodListTags      = "listTags"
	MethodCreateNote    = "createNote"
)

type ListNotebooksResult struct {
	Success []*Notebook // 0
	Faults
}

func (r *ListNotebooksResult) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "listNotebooks_result", func(w *structWriter) {
		writeStructList(w, "success", 0, r.Success)
		r.Faults.write(w)
	})
}

func (r *ListNotebooksResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "listNotebooks_result", func(id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.LIST {
			var err error
			r.Success, err = readStructList[Notebook](ctx, p)
			return true, err
		}
		return r.Faults.read(ctx, p, id, t)
	})
}

type ListTagsResult struct {
	Success []*Tag // 0
	Faults
}

func (r *ListTagsResult) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "listTags_result", func(w *structWriter) {
		writeStructList(w, "success", 0, r.Success)
		r.Faults.write(w)
	})
}

func (r *ListTagsResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "listTags_result", func(id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.LIST {
			var err error
			r.Success, err = readStructList[Tag](ctx, p)
			return true, err
		}
		return r.Faults.read(ctx, p, id, t)
	})
}

type CreateNoteArgs struct {
	AuthenticationToken string // 1
	Note                *Note  // 2
}

func (a *CreateNoteArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "createNote_args", func(w *structWriter) {
		w.String("authenticationToken", 1, &a.AuthenticationToken)
		if a.Note != nil {
			w.Struct("note", 2, a.Note)
		}
	})
}

func (a *CreateNoteArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "createNote_args", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			a.AuthenticationToken, err = p.ReadString(ctx)
		case id == 2 && t == thrift.STRUCT:
			a.Note = &Note{}
			err = a.Note.Read(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

type CreateNoteResult struct {
	Success *Note // 0
	Faults
}

func (r *CreateNoteResult) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "createNote_result", func(w *structWriter) {
		if r.Success != nil {
			w.Struct("success", 0, r.Success)
		}
		r.Faults.write(w)
	})
}

func (r *CreateNoteResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "createNote_result", func(id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.STRUCT {
			r.Success = &Note{}
			return true, r.Success.Read(ctx, p)
		}
		return r.Faults.read(ctx, p, id, t)
	})
}

// NoteStoreClient calls the NoteStore service of one shard.
type NoteStoreClient struct {
	c thrift.TClient
}

func NewNoteStoreClient(c thrift.TClient) *NoteStoreClient {
	return &NoteStoreClient{c: c}
}

func (c *NoteStoreClient) ListNotebooks(ctx context.Context, token string) ([]*Notebook, error) {
	var res ListNotebooksResult
	if _, err := c.c.Call(ctx, MethodListNotebooks, &TokenArgs{AuthenticationToken: token}, &res); err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Success, nil
}

func (c *NoteStoreClient) ListTags(ctx context.Context, token string) ([]*Tag, error) {
	var res ListTagsResult
	if _, err := c.c.Call(ctx, MethodListTags, &TokenArgs{AuthenticationToken: token}, &res); err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return res.Success, nil
}

// CreateNote submits note and returns the stored copy with its GUID.
func (c *NoteStoreClient) CreateNote(ctx context.Context, token string, note *Note) (*Note, error) {
	var res CreateNoteResult
	if _, err := c.c.Call(ctx, MethodCreateNote, &CreateNoteArgs{AuthenticationToken: token, Note: note}, &res); err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	if res.Success == nil {
		return nil, missingResult(MethodCreateNote)
	}
	return res.Success, nil
}
