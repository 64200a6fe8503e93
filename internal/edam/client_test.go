package edam_test

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/pictnote/internal/edam"
	"github.com/starford/pictnote/internal/edam/edamtest"
)

func dialUserStore(t *testing.T, srv *edamtest.Server) *edam.UserStoreClient {
	t.Helper()
	c, err := edam.Dial(edam.UserStoreURL(srv.URL), nil, "pictnote-test")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return edam.NewUserStoreClient(c)
}

func TestUserStoreCalls(t *testing.T) {
	ctx := context.Background()
	srv := edamtest.New(t)
	us := dialUserStore(t, srv)

	ok, err := us.CheckVersion(ctx, "PictNote", edam.VersionMajor, edam.VersionMinor)
	if err != nil || !ok {
		t.Fatalf("CheckVersion = %v, %v", ok, err)
	}

	auth, err := us.Authenticate(ctx, "user", "secret", "key", "consumer-secret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if auth.AuthenticationToken != srv.Token {
		t.Errorf("token = %q", auth.AuthenticationToken)
	}
	if edam.Deref(auth.User.ShardID) != "s1" {
		t.Errorf("shard = %q", edam.Deref(auth.User.ShardID))
	}

	u, err := us.GetUser(ctx, srv.DeveloperToken)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if edam.Deref(u.Username) != "user" {
		t.Errorf("username = %q", edam.Deref(u.Username))
	}

	want := []string{edam.MethodCheckVersion, edam.MethodAuthenticate, edam.MethodGetUser}
	calls := srv.Calls()
	if len(calls) != len(want) {
		t.Fatalf("calls = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestAuthenticateRejected(t *testing.T) {
	srv := edamtest.New(t)
	us := dialUserStore(t, srv)

	_, err := us.Authenticate(context.Background(), "user", "wrong", "key", "consumer-secret")
	var ue *edam.UserException
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want *UserException", err)
	}
	if ue.ErrorCode != edam.ErrorInvalidAuth || edam.Deref(ue.Parameter) != "password" {
		t.Errorf("exception = %v", ue)
	}
}

func TestNoteStoreCreateNote(t *testing.T) {
	ctx := context.Background()
	srv := edamtest.New(t)
	srv.Notebooks = []*edam.Notebook{{GUID: edam.Ptr("nb-1"), Name: edam.Ptr("Photos")}}

	c, err := edam.Dial(edam.NoteStoreURL(srv.URL, "s1"), nil, "")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	ns := edam.NewNoteStoreClient(c)

	nbs, err := ns.ListNotebooks(ctx, srv.Token)
	if err != nil {
		t.Fatalf("ListNotebooks: %v", err)
	}
	if len(nbs) != 1 || edam.Deref(nbs[0].Name) != "Photos" {
		t.Errorf("notebooks = %v", nbs)
	}

	created, err := ns.CreateNote(ctx, srv.Token, &edam.Note{
		Title:        edam.Ptr("hello"),
		Content:      edam.Ptr("<en-note/>"),
		NotebookGUID: edam.Ptr("nb-1"),
	})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if edam.Deref(created.GUID) == "" {
		t.Error("created note has no GUID")
	}
	if notes := srv.Notes(); len(notes) != 1 || edam.Deref(notes[0].Title) != "hello" {
		t.Errorf("server notes = %v", notes)
	}

	if _, err := ns.ListTags(ctx, "bogus"); err == nil {
		t.Error("ListTags with a bad token succeeded")
	}
}

func TestNoteStoreSystemException(t *testing.T) {
	srv := edamtest.New(t)
	srv.CreateNoteErr = &edam.SystemException{ErrorCode: edam.ErrorShardUnavailable, Message: edam.Ptr("maintenance")}

	c, err := edam.Dial(edam.NoteStoreURL(srv.URL, "s1"), nil, "")
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	_, err = edam.NewNoteStoreClient(c).CreateNote(context.Background(), srv.Token, &edam.Note{Title: edam.Ptr("x")})
	var se *edam.SystemException
	if !errors.As(err, &se) || se.ErrorCode != edam.ErrorShardUnavailable {
		t.Fatalf("err = %v, want SHARD_UNAVAILABLE", err)
	}
}
