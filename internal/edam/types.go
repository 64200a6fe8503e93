package edam

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// Data is the body of a resource. BodyHash is the raw MD5 of Body.
type Data struct {
	BodyHash []byte // 1
	Size     *int32 // 2
	Body     []byte // 3
}

func (d *Data) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "Data", func(w *structWriter) {
		w.Binary("bodyHash", 1, d.BodyHash)
		w.I32("size", 2, d.Size)
		w.Binary("body", 3, d.Body)
	})
}

func (d *Data) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "Data", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			d.BodyHash, err = p.ReadBinary(ctx)
		case id == 2 && t == thrift.I32:
			d.Size, err = readI32(ctx, p)
		case id == 3 && t == thrift.STRING:
			d.Body, err = p.ReadBinary(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

// ResourceAttributes carries optional resource metadata.
type ResourceAttributes struct {
	SourceURL  *string // 1
	FileName   *string // 10
	Attachment *bool   // 11
}

func (a *ResourceAttributes) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "ResourceAttributes", func(w *structWriter) {
		w.String("sourceURL", 1, a.SourceURL)
		w.String("fileName", 10, a.FileName)
		w.Bool("attachment", 11, a.Attachment)
	})
}

func (a *ResourceAttributes) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "ResourceAttributes", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			a.SourceURL, err = readString(ctx, p)
		case id == 10 && t == thrift.STRING:
			a.FileName, err = readString(ctx, p)
		case id == 11 && t == thrift.BOOL:
			a.Attachment, err = readBool(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

// Resource is a note attachment.
type Resource struct {
	GUID       *string             // 1
	NoteGUID   *string             // 2
	Data       *Data               // 3
	Mime       *string             // 4
	Attributes *ResourceAttributes // 11
}

func (r *Resource) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "Resource", func(w *structWriter) {
		w.String("guid", 1, r.GUID)
		w.String("noteGuid", 2, r.NoteGUID)
		if r.Data != nil {
			w.Struct("data", 3, r.Data)
		}
		w.String("mime", 4, r.Mime)
		if r.Attributes != nil {
			w.Struct("attributes", 11, r.Attributes)
		}
	})
}

func (r *Resource) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "Resource", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			r.GUID, err = readString(ctx, p)
		case id == 2 && t == thrift.STRING:
			r.NoteGUID, err = readString(ctx, p)
		case id == 3 && t == thrift.STRUCT:
			r.Data = &Data{}
			err = r.Data.Read(ctx, p)
		case id == 4 && t == thrift.STRING:
			r.Mime, err = readString(ctx, p)
		case id == 11 && t == thrift.STRUCT:
			r.Attributes = &ResourceAttributes{}
			err = r.Attributes.Read(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

// NoteAttributes carries optional note metadata; only geolocation is used.
type NoteAttributes struct {
	SubjectDate       *int64   // 1
	Latitude          *float64 // 10
	Longitude         *float64 // 11
	Altitude          *float64 // 12
	Author            *string  // 13
	Source            *string  // 14
	SourceURL         *string  // 15
	SourceApplication *string  // 16
}

func (a *NoteAttributes) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "NoteAttributes", func(w *structWriter) {
		w.I64("subjectDate", 1, a.SubjectDate)
		w.Double("latitude", 10, a.Latitude)
		w.Double("longitude", 11, a.Longitude)
		w.Double("altitude", 12, a.Altitude)
		w.String("author", 13, a.Author)
		w.String("source", 14, a.Source)
		w.String("sourceURL", 15, a.SourceURL)
		w.String("sourceApplication", 16, a.SourceApplication)
	})
}

func (a *NoteAttributes) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "NoteAttributes", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.I64:
			a.SubjectDate, err = readI64(ctx, p)
		case id == 10 && t == thrift.DOUBLE:
			a.Latitude, err = readDouble(ctx, p)
		case id == 11 && t == thrift.DOUBLE:
			a.Longitude, err = readDouble(ctx, p)
		case id == 12 && t == thrift.DOUBLE:
			a.Altitude, err = readDouble(ctx, p)
		case id == 13 && t == thrift.STRING:
			a.Author, err = readString(ctx, p)
		case id == 14 && t == thrift.STRING:
			a.Source, err = readString(ctx, p)
		case id == 15 && t == thrift.STRING:
			a.SourceURL, err = readString(ctx, p)
		case id == 16 && t == thrift.STRING:
			a.SourceApplication, err = readString(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

// Note is the EDAM note struct.
type Note struct {
	GUID          *string         // 1
	Title         *string         // 2
	Content       *string         // 3
	ContentHash   []byte          // 4
	ContentLength *int32          // 5
	Created       *int64          // 6
	Updated       *int64          // 7
	Active        *bool           // 9
	NotebookGUID  *string         // 11
	TagGUIDs      []string        // 12
	Resources     []*Resource     // 13
	Attributes    *NoteAttributes // 14
	TagNames      []string        // 15
}

func (n *Note) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "Note", func(w *structWriter) {
		w.String("guid", 1, n.GUID)
		w.String("title", 2, n.Title)
		w.String("content", 3, n.Content)
		w.Binary("contentHash", 4, n.ContentHash)
		w.I32("contentLength", 5, n.ContentLength)
		w.I64("created", 6, n.Created)
		w.I64("updated", 7, n.Updated)
		w.Bool("active", 9, n.Active)
		w.String("notebookGuid", 11, n.NotebookGUID)
		w.StringList("tagGuids", 12, n.TagGUIDs)
		writeStructList(w, "resources", 13, n.Resources)
		if n.Attributes != nil {
			w.Struct("attributes", 14, n.Attributes)
		}
		w.StringList("tagNames", 15, n.TagNames)
	})
}

func (n *Note) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "Note", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			n.GUID, err = readString(ctx, p)
		case id == 2 && t == thrift.STRING:
			n.Title, err = readString(ctx, p)
		case id == 3 && t == thrift.STRING:
			n.Content, err = readString(ctx, p)
		case id == 4 && t == thrift.STRING:
			n.ContentHash, err = p.ReadBinary(ctx)
		case id == 5 && t == thrift.I32:
			n.ContentLength, err = readI32(ctx, p)
		case id == 6 && t == thrift.I64:
			n.Created, err = readI64(ctx, p)
		case id == 7 && t == thrift.I64:
			n.Updated, err = readI64(ctx, p)
		case id == 9 && t == thrift.BOOL:
			n.Active, err = readBool(ctx, p)
		case id == 11 && t == thrift.STRING:
			n.NotebookGUID, err = readString(ctx, p)
		case id == 12 && t == thrift.LIST:
			n.TagGUIDs, err = readStringList(ctx, p)
		case id == 13 && t == thrift.LIST:
			n.Resources, err = readStructList[Resource](ctx, p)
		case id == 14 && t == thrift.STRUCT:
			n.Attributes = &NoteAttributes{}
			err = n.Attributes.Read(ctx, p)
		case id == 15 && t == thrift.LIST:
			n.TagNames, err = readStringList(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

// Notebook is a note container.
type Notebook struct {
	GUID *string // 1
	Name *string // 2
}

func (nb *Notebook) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "Notebook", func(w *structWriter) {
		w.String("guid", 1, nb.GUID)
		w.String("name", 2, nb.Name)
	})
}

func (nb *Notebook) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "Notebook", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			nb.GUID, err = readString(ctx, p)
		case id == 2 && t == thrift.STRING:
			nb.Name, err = readString(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

// Tag is a note label.
type Tag struct {
	GUID       *string // 1
	Name       *string // 2
	ParentGUID *string // 3
}

func (tg *Tag) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "Tag", func(w *structWriter) {
		w.String("guid", 1, tg.GUID)
		w.String("name", 2, tg.Name)
		w.String("parentGuid", 3, tg.ParentGUID)
	})
}

func (tg *Tag) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "Tag", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			tg.GUID, err = readString(ctx, p)
		case id == 2 && t == thrift.STRING:
			tg.Name, err = readString(ctx, p)
		case id == 3 && t == thrift.STRING:
			tg.ParentGUID, err = readString(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

// User is the authenticated account. Field 15 (attributes) and later are
// not modelled and are skipped on read.
type User struct {
	ID       *int32  // 1
	Username *string // 2
	Email    *string // 3
	Name     *string // 4
	Active   *bool   // 13
	ShardID  *string // 14
}

func (u *User) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "User", func(w *structWriter) {
		w.I32("id", 1, u.ID)
		w.String("username", 2, u.Username)
		w.String("email", 3, u.Email)
		w.String("name", 4, u.Name)
		w.Bool("active", 13, u.Active)
		w.String("shardId", 14, u.ShardID)
	})
}

func (u *User) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "User", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.I32:
			u.ID, err = readI32(ctx, p)
		case id == 2 && t == thrift.STRING:
			u.Username, err = readString(ctx, p)
		case id == 3 && t == thrift.STRING:
			u.Email, err = readString(ctx, p)
		case id == 4 && t == thrift.STRING:
			u.Name, err = readString(ctx, p)
		case id == 13 && t == thrift.BOOL:
			u.Active, err = readBool(ctx, p)
		case id == 14 && t == thrift.STRING:
			u.ShardID, err = readString(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

// AuthenticationResult is returned by UserStore.authenticate.
type AuthenticationResult struct {
	CurrentTime         int64  // 1
	AuthenticationToken string // 2
	Expiration          int64  // 3
	User                *User  // 4
}

func (r *AuthenticationResult) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "AuthenticationResult", func(w *structWriter) {
		w.I64("currentTime", 1, &r.CurrentTime)
		w.String("authenticationToken", 2, &r.AuthenticationToken)
		w.I64("expiration", 3, &r.Expiration)
		if r.User != nil {
			w.Struct("user", 4, r.User)
		}
	})
}

func (r *AuthenticationResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "AuthenticationResult", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.I64:
			r.CurrentTime, err = p.ReadI64(ctx)
		case id == 2 && t == thrift.STRING:
			r.AuthenticationToken, err = p.ReadString(ctx)
		case id == 3 && t == thrift.I64:
			r.Expiration, err = p.ReadI64(ctx)
		case id == 4 && t == thrift.STRUCT:
			r.User = &User{}
			err = r.User.Read(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

// Ptr returns a pointer to v. Optional EDAM fields are pointers.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
