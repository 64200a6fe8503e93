package edam

import (
	"context"
	"fmt"

	"github.com/apache/thrift/lib/go/thrift"
)

// structWriter writes the fields of one struct and keeps the first error,
// so field writes can be chained without per-call checks.
type structWriter struct {
	ctx context.Context
	p   thrift.TProtocol
	err error
}

func writeStruct(ctx context.Context, p thrift.TProtocol, name string, fields func(w *structWriter)) error {
	w := &structWriter{ctx: ctx, p: p}
	w.do(func() error { return p.WriteStructBegin(ctx, name) })
	fields(w)
	w.do(func() error { return p.WriteFieldStop(ctx) })
	w.do(func() error { return p.WriteStructEnd(ctx) })
	if w.err != nil {
		return thrift.PrependError(fmt.Sprintf("%s write error: ", name), w.err)
	}
	return nil
}

func (w *structWriter) do(f func() error) {
	if w.err == nil {
		w.err = f()
	}
}

func (w *structWriter) field(name string, t thrift.TType, id int16, value func() error) {
	w.do(func() error { return w.p.WriteFieldBegin(w.ctx, name, t, id) })
	w.do(value)
	w.do(func() error { return w.p.WriteFieldEnd(w.ctx) })
}

func (w *structWriter) String(name string, id int16, v *string) {
	if v == nil {
		return
	}
	w.field(name, thrift.STRING, id, func() error { return w.p.WriteString(w.ctx, *v) })
}

func (w *structWriter) Binary(name string, id int16, v []byte) {
	if v == nil {
		return
	}
	w.field(name, thrift.STRING, id, func() error { return w.p.WriteBinary(w.ctx, v) })
}

func (w *structWriter) Bool(name string, id int16, v *bool) {
	if v == nil {
		return
	}
	w.field(name, thrift.BOOL, id, func() error { return w.p.WriteBool(w.ctx, *v) })
}

func (w *structWriter) I16(name string, id int16, v int16) {
	w.field(name, thrift.I16, id, func() error { return w.p.WriteI16(w.ctx, v) })
}

func (w *structWriter) I32(name string, id int16, v *int32) {
	if v == nil {
		return
	}
	w.field(name, thrift.I32, id, func() error { return w.p.WriteI32(w.ctx, *v) })
}

func (w *structWriter) I64(name string, id int16, v *int64) {
	if v == nil {
		return
	}
	w.field(name, thrift.I64, id, func() error { return w.p.WriteI64(w.ctx, *v) })
}

func (w *structWriter) Double(name string, id int16, v *float64) {
	if v == nil {
		return
	}
	w.field(name, thrift.DOUBLE, id, func() error { return w.p.WriteDouble(w.ctx, *v) })
}

func (w *structWriter) Struct(name string, id int16, v thrift.TStruct) {
	w.field(name, thrift.STRUCT, id, func() error { return v.Write(w.ctx, w.p) })
}

func (w *structWriter) StringList(name string, id int16, v []string) {
	if v == nil {
		return
	}
	w.field(name, thrift.LIST, id, func() error {
		if err := w.p.WriteListBegin(w.ctx, thrift.STRING, len(v)); err != nil {
			return err
		}
		for _, s := range v {
			if err := w.p.WriteString(w.ctx, s); err != nil {
				return err
			}
		}
		return w.p.WriteListEnd(w.ctx)
	})
}

func writeStructList[T thrift.TStruct](w *structWriter, name string, id int16, v []T) {
	if v == nil {
		return
	}
	w.field(name, thrift.LIST, id, func() error {
		if err := w.p.WriteListBegin(w.ctx, thrift.STRUCT, len(v)); err != nil {
			return err
		}
		for _, s := range v {
			if err := s.Write(w.ctx, w.p); err != nil {
				return err
			}
		}
		return w.p.WriteListEnd(w.ctx)
	})
}

// readStruct reads one struct, handing each field to fn. Fields for which fn
// returns false are skipped, so newer server fields are tolerated.
func readStruct(ctx context.Context, p thrift.TProtocol, name string, fn func(id int16, t thrift.TType) (bool, error)) error {
	if _, err := p.ReadStructBegin(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%s read error: ", name), err)
	}
	for {
		_, t, id, err := p.ReadFieldBegin(ctx)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%s field %d read error: ", name, id), err)
		}
		if t == thrift.STOP {
			break
		}
		handled, err := fn(id, t)
		if err != nil {
			return thrift.PrependError(fmt.Sprintf("%s field %d read error: ", name, id), err)
		}
		if !handled {
			if err := p.Skip(ctx, t); err != nil {
				return err
			}
		}
		if err := p.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	if err := p.ReadStructEnd(ctx); err != nil {
		return thrift.PrependError(fmt.Sprintf("%s read struct end error: ", name), err)
	}
	return nil
}

func readString(ctx context.Context, p thrift.TProtocol) (*string, error) {
	v, err := p.ReadString(ctx)
	return &v, err
}

func readBool(ctx context.Context, p thrift.TProtocol) (*bool, error) {
	v, err := p.ReadBool(ctx)
	return &v, err
}

func readI32(ctx context.Context, p thrift.TProtocol) (*int32, error) {
	v, err := p.ReadI32(ctx)
	return &v, err
}

func readI64(ctx context.Context, p thrift.TProtocol) (*int64, error) {
	v, err := p.ReadI64(ctx)
	return &v, err
}

func readDouble(ctx context.Context, p thrift.TProtocol) (*float64, error) {
	v, err := p.ReadDouble(ctx)
	return &v, err
}

func readStringList(ctx context.Context, p thrift.TProtocol) ([]string, error) {
	_, size, err := p.ReadListBegin(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, size)
	for i := 0; i < size; i++ {
		s, err := p.ReadString(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, p.ReadListEnd(ctx)
}

func readStructList[T any, PT interface {
	*T
	thrift.TStruct
}](ctx context.Context, p thrift.TProtocol) ([]*T, error) {
	_, size, err := p.ReadListBegin(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, size)
	for i := 0; i < size; i++ {
		v := PT(new(T))
		if err := v.Read(ctx, p); err != nil {
			return nil, err
		}
		out = append(out, (*T)(v))
	}
	return out, p.ReadListEnd(ctx)
}
