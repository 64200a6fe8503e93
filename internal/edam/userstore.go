package edam

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"
)

// UserStore method names.
const (
	MethodCheckVersion = "checkVersion"
	MethodAuthenticate = "authenticate"
	MethodGetUser      = "getUser"
)

type CheckVersionArgs struct {
	ClientName       string // 1
	EDAMVersionMajor int16  // 2
	EDAMVersionMinor int16  // 3
}

func (a *CheckVersionArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "checkVersion_args", func(w *structWriter) {
		w.String("clientName", 1, &a.ClientName)
		w.I16("edamVersionMajor", 2, a.EDAMVersionMajor)
		w.I16("edamVersionMinor", 3, a.EDAMVersionMinor)
	})
}

func (a *CheckVersionArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "checkVersion_args", func(id int16, t thrift.TType) (bool, error) {
		var err error
		switch {
		case id == 1 && t == thrift.STRING:
			a.ClientName, err = p.ReadString(ctx)
		case id == 2 && t == thrift.I16:
			a.EDAMVersionMajor, err = p.ReadI16(ctx)
		case id == 3 && t == thrift.I16:
			a.EDAMVersionMinor, err = p.ReadI16(ctx)
		default:
			return false, nil
		}
		return true, err
	})
}

type CheckVersionResult struct {
	Success *bool // 0
}

func (r *CheckVersionResult) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "checkVersion_result", func(w *structWriter) {
		w.Bool("success", 0, r.Success)
	})
}

func (r *CheckVersionResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "checkVersion_result", func(id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.BOOL {
			var err error
			r.Success, err = readBool(ctx, p)
			return true, err
		}
		return false, nil
	})
}

type AuthenticateArgs struct {
	Username       string // 1
	Password       string // 2
	ConsumerKey    string // 3
	ConsumerSecret string // 4
}

func (a *AuthenticateArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "authenticate_args", func(w *structWriter) {
		w.String("username", 1, &a.Username)
		w.String("password", 2, &a.Password)
		w.String("consumerKey", 3, &a.ConsumerKey)
		w.String("consumerSecret", 4, &a.ConsumerSecret)
	})
}

func (a *AuthenticateArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "authenticate_args", func(id int16, t thrift.TType) (bool, error) {
		if t != thrift.STRING {
			return false, nil
		}
		var dst *string
		switch id {
		case 1:
			dst = &a.Username
		case 2:
			dst = &a.Password
		case 3:
			dst = &a.ConsumerKey
		case 4:
			dst = &a.ConsumerSecret
		default:
			return false, nil
		}
		v, err := p.ReadString(ctx)
		*dst = v
		return true, err
	})
}

type AuthenticateResult struct {
	Success *AuthenticationResult // 0
	Faults
}

func (r *AuthenticateResult) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "authenticate_result", func(w *structWriter) {
		if r.Success != nil {
			w.Struct("success", 0, r.Success)
		}
		r.Faults.write(w)
	})
}

func (r *AuthenticateResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "authenticate_result", func(id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.STRUCT {
			r.Success = &AuthenticationResult{}
			return true, r.Success.Read(ctx, p)
		}
		return r.Faults.read(ctx, p, id, t)
	})
}

// TokenArgs is the argument list of calls that take only an auth token.
type TokenArgs struct {
	AuthenticationToken string // 1
}

func (a *TokenArgs) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "token_args", func(w *structWriter) {
		w.String("authenticationToken", 1, &a.AuthenticationToken)
	})
}

func (a *TokenArgs) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "token_args", func(id int16, t thrift.TType) (bool, error) {
		if id == 1 && t == thrift.STRING {
			var err error
			a.AuthenticationToken, err = p.ReadString(ctx)
			return true, err
		}
		return false, nil
	})
}

type GetUserResult struct {
	Success *User // 0
	Faults
}

func (r *GetUserResult) Write(ctx context.Context, p thrift.TProtocol) error {
	return writeStruct(ctx, p, "getUser_result", func(w *structWriter) {
		if r.Success != nil {
			w.Struct("success", 0, r.Success)
		}
		r.Faults.write(w)
	})
}

func (r *GetUserResult) Read(ctx context.Context, p thrift.TProtocol) error {
	return readStruct(ctx, p, "getUser_result", func(id int16, t thrift.TType) (bool, error) {
		if id == 0 && t == thrift.STRUCT {
			r.Success = &User{}
			return true, r.Success.Read(ctx, p)
		}
		return r.Faults.read(ctx, p, id, t)
	})
}

// UserStoreClient calls the UserStore service.
type UserStoreClient struct {
	c thrift.TClient
}

func NewUserStoreClient(c thrift.TClient) *UserStoreClient {
	return &UserStoreClient{c: c}
}

// CheckVersion reports whether the service accepts the given protocol version.
func (c *UserStoreClient) CheckVersion(ctx context.Context, clientName string, major, minor int16) (bool, error) {
	args := &CheckVersionArgs{ClientName: clientName, EDAMVersionMajor: major, EDAMVersionMinor: minor}
	var res CheckVersionResult
	if _, err := c.c.Call(ctx, MethodCheckVersion, args, &res); err != nil {
		return false, err
	}
	if res.Success == nil {
		return false, missingResult(MethodCheckVersion)
	}
	return *res.Success, nil
}

// Authenticate exchanges credentials for an authentication token.
func (c *UserStoreClient) Authenticate(ctx context.Context, username, password, consumerKey, consumerSecret string) (*AuthenticationResult, error) {
	args := &AuthenticateArgs{Username: username, Password: password, ConsumerKey: consumerKey, ConsumerSecret: consumerSecret}
	var res AuthenticateResult
	if _, err := c.c.Call(ctx, MethodAuthenticate, args, &res); err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	if res.Success == nil {
		return nil, missingResult(MethodAuthenticate)
	}
	return res.Success, nil
}

// GetUser returns the account that owns token.
func (c *UserStoreClient) GetUser(ctx context.Context, token string) (*User, error) {
	var res GetUserResult
	if _, err := c.c.Call(ctx, MethodGetUser, &TokenArgs{AuthenticationToken: token}, &res); err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	if res.Success == nil {
		return nil, missingResult(MethodGetUser)
	}
	return res.Success, nil
}
