package edam

import (
	"context"
	"fmt"
	"strconv"

	"github.com/apache/thrift/lib/go/thrift"
)

// ErrorCode is the EDAMErrorCode enumeration.
type ErrorCode int32

const (
	ErrorUnknown              ErrorCode = 1
	ErrorBadDataFormat        ErrorCode = 2
	ErrorPermissionDenied     ErrorCode = 3
	ErrorInternalError        ErrorCode = 4
	ErrorDataRequired         ErrorCode = 5
	ErrorLimitReached         ErrorCode = 6
	ErrorQuotaReached         ErrorCode = 7
	ErrorInvalidAuth          ErrorCode = 8
	ErrorAuthExpired          ErrorCode = 9
	ErrorDataConflict         ErrorCode = 10
	ErrorENMLValidation       ErrorCode = 11
	ErrorShardUnavailable     ErrorCode = 12
	ErrorLenTooShort          ErrorCode = 13
	ErrorLenTooLong           ErrorCode = 14
	ErrorTooFew               ErrorCode = 15
	ErrorTooMany              ErrorCode = 16
	ErrorUnsupportedOperation ErrorCode = 17
	ErrorTakenDown            ErrorCode = 18
	ErrorRateLimitReached     ErrorCode = 19
)

var errorCodeNames = map[ErrorCode]string{
	ErrorUnknown:              "UNKNOWN",
	ErrorBadDataFormat:        "BAD_DATA_FORMAT",
	ErrorPermissionDenied:     "PERMISSION_DENIED",
	ErrorInternalError:        "INTERNAL_ERROR",
	ErrorDataRequired:         "DATA_REQUIRED",
	ErrorLimitReached:         "LIMIT_REACHED",
	ErrorQuotaReached:         "QUOTA_REACHED",
	ErrorInvalidAuth:          "INVALID_AUTH",
	ErrorAuthExpired:          "AUTH_EXPIRED",
	ErrorDataConflict:         "DATA_CONFLICT",
	ErrorENMLValidation:       "ENML_VALIDATION",
	ErrorShardUnavailable:     "SHARD_UNAVAILABLE",
	ErrorLenTooShort:          "LEN_TOO_SHORT",
	ErrorLenTooLong:           "LEN_TOO_LONG",
	ErrorTooFew:               "TOO_FEW",
	ErrorTooMany:              "TOO_MANY",
	ErrorUnsupportedOperation: "UNSUPPORTED_OPERATION",
	ErrorTakenDown:            "TAKEN_DOWN",
	ErrorRateLimitReached:     "RATE_LIMIT_REACHED",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "ErrorCode(" + strconv.Itoa(int(c)) + ")"
}

// UserException is EDAMUserException: the request was rejected.
type UserException struct {
	ErrorCode ErrorCode // 1
	Parameter *string   // 2
}

func (e *UserException) Error() string {
	if e.Parameter != nil {
		return fmt.Sprintf("EDAMUserException: %s(%s)", e.ErrorCode, *e.Parameter)
	}
	return fmt.Sprintf("EDAMUserException: %s", e.ErrorCode)
}

func (e *UserException) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "EDAMUserException", func(w *structWriter) {
		code := int32(e.ErrorCode)
		w.I32("errorCode", 1, &code)
		w.String("parameter", 2, e.Parameter)
	})
}

func (e *UserException) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "EDAMUserException", func(id int16, t thrift.TType) (bool, error) {
		switch {
		case id == 1 && t == thrift.I32:
			v, err := p.ReadI32(ctx)
			e.ErrorCode = ErrorCode(v)
			return true, err
		case id == 2 && t == thrift.STRING:
			var err error
			e.Parameter, err = readString(ctx, p)
			return true, err
		}
		return false, nil
	})
}

// SystemException is EDAMSystemException: the service failed.
type SystemException struct {
	ErrorCode         ErrorCode // 1
	Message           *string   // 2
	RateLimitDuration *int32    // 3
}

func (e *SystemException) Error() string {
	msg := fmt.Sprintf("EDAMSystemException: %s", e.ErrorCode)
	if e.Message != nil {
		msg += ": " + *e.Message
	}
	if e.RateLimitDuration != nil {
		msg += fmt.Sprintf(" (retry after %ds)", *e.RateLimitDuration)
	}
	return msg
}

func (e *SystemException) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "EDAMSystemException", func(w *structWriter) {
		code := int32(e.ErrorCode)
		w.I32("errorCode", 1, &code)
		w.String("message", 2, e.Message)
		w.I32("rateLimitDuration", 3, e.RateLimitDuration)
	})
}

func (e *SystemException) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "EDAMSystemException", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.I32:
			var v int32
			v, err = p.ReadI32(ctx)
			e.ErrorCode = ErrorCode(v)
		case id == 2 && t == thrift.STRING:
			e.Message, err = readString(ctx, p)
		case id == 3 && t == thrift.I32:
			e.RateLimitDuration, err = readI32(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}

// NotFoundException is EDAMNotFoundException: a referenced object is missing.
type NotFoundException struct {
	Identifier *string // 1
	Key        *string // 2
}

func (e *NotFoundException) Error() string {
	return fmt.Sprintf("EDAMNotFoundException: %s=%s", Deref(e.Identifier), Deref(e.Key))
}

func (e *NotFoundException) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "EDAMNotFoundException", func(w *structWriter) {
		w.String("identifier", 1, e.Identifier)
		w.String("key", 2, e.Key)
	})
}

func (e *NotFoundException) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "EDAMNotFoundException", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			e.Identifier, err = readString(ctx, p)
		case id == 2 && t == thrift.STRING:
			e.Key, err = readString(ctx, p)
		default:
			return false, nil
		}
		return true, err
	})
}
