package edam

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// Faults holds the declared exceptions of a call result. A server sets at
// most one of them.
type Faults struct {
	UserException     *UserException     // 1
	SystemException   *SystemException   // 2
	NotFoundException *NotFoundException // 3
}

func (f *Faults) write(w *structWriter) {
	if f.UserException != nil {
		w.Struct("userException", 1, f.UserException)
	}
	if f.SystemException != nil {
		w.Struct("systemException", 2, f.SystemException)
	}
	if f.NotFoundException != nil {
		w.Struct("notFoundException", 3, f.NotFoundException)
	}
}

func (f *Faults) read(ctx context.Context, p thrift.TProtocol, id int16, t thrift.TType) (bool, error) {
	if t != thrift.STRUCT {
		return false, nil
	}
	switch id {
	case 1:
		f.UserException = &UserException{}
		return true, f.UserException.Read(ctx, p)
	case 2:
		f.SystemException = &SystemException{}
		return true, f.SystemException.Read(ctx, p)
	case 3:
		f.NotFoundException = &NotFoundException{}
		return true, f.NotFoundException.Read(ctx, p)
	}
	return false, nil
}

// Err returns the exception carried by the result, or nil.
func (f *Faults) Err() error {
	switch {
	case f.UserException != nil:
		return f.UserException
	case f.SystemException != nil:
		return f.SystemException
	case f.NotFoundException != nil:
		return f.NotFoundException
	}
	return nil
}

// SetErr stores err in the matching exception slot. It reports false when
// err is not an EDAM exception.
func (f *Faults) SetErr(err error) bool {
	switch e := err.(type) {
	case *UserException:
		f.UserException = e
	case *SystemException:
		f.SystemException = e
	case *NotFoundException:
		f.NotFoundException = e
	default:
		return false
	}
	return true
}

func missingResult(method string) error {
	return thrift.NewTApplicationException(thrift.MISSING_RESULT, method+" failed: unknown result")
}
