// Package edamtest provides an in-process EDAM service for tests.
package edamtest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/starford/pictnote/internal/edam"
)

// Server answers UserStore and NoteStore calls from fixed fixtures. Exported
// fields may be changed between calls.
type Server struct {
	URL string

	mu sync.Mutex

	VersionOK      bool
	Username       string
	Password       string
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	DeveloperToken string
	Shard          string
	Notebooks      []*edam.Notebook
	Tags           []*edam.Tag
	// CreateNoteErr, when an EDAM exception, is returned by createNote.
	CreateNoteErr error

	calls []string
	notes []*edam.Note
	srv   *httptest.Server
}

// New starts a server with one account (user/secret, shard s1) and
// registers its shutdown with t.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		VersionOK:      true,
		Username:       "user",
		Password:       "secret",
		ConsumerKey:    "key",
		ConsumerSecret: "consumer-secret",
		Token:          "S=s1:U=1:token",
		DeveloperToken: "S=s1:U=1:devtoken",
		Shard:          "s1",
	}
	r := chi.NewRouter()
	r.Post("/edam/user", s.serve(s.userStore))
	r.Post("/edam/note/{shard}", func(w http.ResponseWriter, req *http.Request) {
		if chi.URLParam(req, "shard") != s.shard() {
			http.NotFound(w, req)
			return
		}
		s.serve(s.noteStore)(w, req)
	})
	s.srv = httptest.NewServer(r)
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

// Lock guards fixture changes made while clients may be calling.
func (s *Server) Lock()   { s.mu.Lock() }
func (s *Server) Unlock() { s.mu.Unlock() }

// Calls returns the method names received, in order.
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Notes returns the notes accepted by createNote.
func (s *Server) Notes() []*edam.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*edam.Note(nil), s.notes...)
}

func (s *Server) shard() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Shard
}

type dispatchFunc func(ctx context.Context, method string, in thrift.TProtocol) (thrift.TStruct, error)

func (s *Server) serve(dispatch dispatchFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		conf := &thrift.TConfiguration{}
		in := thrift.NewTBinaryProtocolConf(&thrift.TMemoryBuffer{Buffer: bytes.NewBuffer(body)}, conf)
		outBuf := thrift.NewTMemoryBuffer()
		out := thrift.NewTBinaryProtocolConf(outBuf, conf)

		method, _, seq, err := in.ReadMessageBegin(ctx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		s.calls = append(s.calls, method)
		result, err := dispatch(ctx, method, in)
		s.mu.Unlock()

		if err != nil {
			appErr := thrift.NewTApplicationException(thrift.UNKNOWN_METHOD, err.Error())
			_ = out.WriteMessageBegin(ctx, method, thrift.EXCEPTION, seq)
			_ = appErr.Write(ctx, out)
		} else {
			_ = out.WriteMessageBegin(ctx, method, thrift.REPLY, seq)
			_ = result.Write(ctx, out)
		}
		_ = out.WriteMessageEnd(ctx)
		_ = out.Flush(ctx)

		w.Header().Set("Content-Type", "application/x-thrift")
		_, _ = w.Write(outBuf.Bytes())
	}
}

type unknownMethodError string

func (e unknownMethodError) Error() string { return "unknown method " + string(e) }

// readArgs decodes the call arguments and the message trailer.
func readArgs(ctx context.Context, in thrift.TProtocol, args thrift.TStruct) error {
	if err := args.Read(ctx, in); err != nil {
		return err
	}
	return in.ReadMessageEnd(ctx)
}

func (s *Server) userStore(ctx context.Context, method string, in thrift.TProtocol) (thrift.TStruct, error) {
	switch method {
	case edam.MethodCheckVersion:
		var args edam.CheckVersionArgs
		if err := readArgs(ctx, in, &args); err != nil {
			return nil, err
		}
		return &edam.CheckVersionResult{Success: edam.Ptr(s.VersionOK)}, nil

	case edam.MethodAuthenticate:
		var args edam.AuthenticateArgs
		if err := readArgs(ctx, in, &args); err != nil {
			return nil, err
		}
		res := &edam.AuthenticateResult{}
		switch {
		case args.ConsumerKey != s.ConsumerKey || args.ConsumerSecret != s.ConsumerSecret:
			res.SetErr(&edam.UserException{ErrorCode: edam.ErrorInvalidAuth, Parameter: edam.Ptr("consumerKey")})
		case args.Username != s.Username:
			res.SetErr(&edam.UserException{ErrorCode: edam.ErrorInvalidAuth, Parameter: edam.Ptr("username")})
		case args.Password != s.Password:
			res.SetErr(&edam.UserException{ErrorCode: edam.ErrorInvalidAuth, Parameter: edam.Ptr("password")})
		default:
			res.Success = &edam.AuthenticationResult{
				AuthenticationToken: s.Token,
				User:                s.user(),
			}
		}
		return res, nil

	case edam.MethodGetUser:
		var args edam.TokenArgs
		if err := readArgs(ctx, in, &args); err != nil {
			return nil, err
		}
		res := &edam.GetUserResult{}
		if s.validToken(args.AuthenticationToken) {
			res.Success = s.user()
		} else {
			res.SetErr(invalidToken())
		}
		return res, nil
	}
	return nil, unknownMethodError(method)
}

func (s *Server) noteStore(ctx context.Context, method string, in thrift.TProtocol) (thrift.TStruct, error) {
	switch method {
	case edam.MethodListNotebooks:
		var args edam.TokenArgs
		if err := readArgs(ctx, in, &args); err != nil {
			return nil, err
		}
		res := &edam.ListNotebooksResult{}
		if !s.validToken(args.AuthenticationToken) {
			res.SetErr(invalidToken())
			return res, nil
		}
		res.Success = append([]*edam.Notebook{}, s.Notebooks...)
		return res, nil

	case edam.MethodListTags:
		var args edam.TokenArgs
		if err := readArgs(ctx, in, &args); err != nil {
			return nil, err
		}
		res := &edam.ListTagsResult{}
		if !s.validToken(args.AuthenticationToken) {
			res.SetErr(invalidToken())
			return res, nil
		}
		res.Success = append([]*edam.Tag{}, s.Tags...)
		return res, nil

	case edam.MethodCreateNote:
		var args edam.CreateNoteArgs
		if err := readArgs(ctx, in, &args); err != nil {
			return nil, err
		}
		res := &edam.CreateNoteResult{}
		switch {
		case !s.validToken(args.AuthenticationToken):
			res.SetErr(invalidToken())
		case s.CreateNoteErr != nil && res.SetErr(s.CreateNoteErr):
		case args.Note == nil:
			res.SetErr(&edam.UserException{ErrorCode: edam.ErrorDataRequired, Parameter: edam.Ptr("Note")})
		default:
			note := *args.Note
			note.GUID = edam.Ptr(uuid.NewString())
			s.notes = append(s.notes, &note)
			res.Success = &note
		}
		return res, nil
	}
	return nil, unknownMethodError(method)
}

func (s *Server) validToken(token string) bool {
	return token != "" && (token == s.Token || token == s.DeveloperToken)
}

func (s *Server) user() *edam.User {
	return &edam.User{
		ID:       edam.Ptr(int32(1)),
		Username: edam.Ptr(s.Username),
		Active:   edam.Ptr(true),
		ShardID:  edam.Ptr(s.Shard),
	}
}

func invalidToken() *edam.UserException {
	return &edam.UserException{ErrorCode: edam.ErrorInvalidAuth, Parameter: edam.Ptr("authenticationToken")}
}
