// Package session drives the EDAM handshake and note submission for one
// account: version check, authentication, note store discovery, notebook
// and tag resolution, note creation.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starford/pictnote/internal/apperr"
	"github.com/starford/pictnote/internal/edam"
	"github.com/starford/pictnote/internal/models"
)

// State is the position of a Client in the handshake.
type State int

const (
	Unauthenticated State = iota
	VersionChecked
	Authenticated
	NoteStoreReady
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case VersionChecked:
		return "version-checked"
	case Authenticated:
		return "authenticated"
	case NoteStoreReady:
		return "note-store-ready"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Credentials identify the account. When DeveloperToken is set it is used
// as the authentication token and the password exchange is skipped.
type Credentials struct {
	Username       string
	Password       string
	ConsumerKey    string
	ConsumerSecret string
	DeveloperToken string
}

// Config selects the service and account.
type Config struct {
	ServiceURL  string
	ClientName  string
	Credentials Credentials
}

// UserStore is the subset of the EDAM UserStore used by Client.
type UserStore interface {
	CheckVersion(ctx context.Context, clientName string, major, minor int16) (bool, error)
	Authenticate(ctx context.Context, username, password, consumerKey, consumerSecret string) (*edam.AuthenticationResult, error)
	GetUser(ctx context.Context, token string) (*edam.User, error)
}

// NoteStore is the subset of the EDAM NoteStore used by Client.
type NoteStore interface {
	ListNotebooks(ctx context.Context, token string) ([]*edam.Notebook, error)
	ListTags(ctx context.Context, token string) ([]*edam.Tag, error)
	CreateNote(ctx context.Context, token string, note *edam.Note) (*edam.Note, error)
}

// NoteStoreDialer opens the note store served at url.
type NoteStoreDialer func(url string) (NoteStore, error)

// Client is a stateful session. It is not safe for concurrent use.
type Client struct {
	cfg       Config
	users     UserStore
	dialNotes NoteStoreDialer
	logger    *slog.Logger

	state State
	token string
	user  models.User
	notes NoteStore

	// Listings are fetched on first use and never refreshed.
	notebooks []models.Notebook
	tags      []models.Tag
}

// New creates a Client in the Unauthenticated state.
func New(cfg Config, users UserStore, dial NoteStoreDialer, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, users: users, dialNotes: dial, logger: logger}
}

// Dial connects to the service over HTTP and runs the full handshake.
func Dial(ctx context.Context, cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	tc, err := edam.Dial(edam.UserStoreURL(cfg.ServiceURL), httpClient, cfg.ClientName)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	dial := func(url string) (NoteStore, error) {
		tc, err := edam.Dial(url, httpClient, cfg.ClientName)
		if err != nil {
			return nil, err
		}
		return edam.NewNoteStoreClient(tc), nil
	}
	c := New(cfg, edam.NewUserStoreClient(tc), dial, logger)
	if err := c.Open(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Open runs CheckVersion, Authenticate and InitNoteStore in order.
func (c *Client) Open(ctx context.Context) error {
	if err := c.CheckVersion(ctx); err != nil {
		return err
	}
	if err := c.Authenticate(ctx); err != nil {
		return err
	}
	return c.InitNoteStore(ctx)
}

// State returns the current handshake state.
func (c *Client) State() State { return c.state }

// User returns the authenticated account. It is zero before Authenticate.
func (c *Client) User() models.User { return c.user }

func (c *Client) require(op string, want State) error {
	if c.state != want {
		return fmt.Errorf("session: %s in state %s: %w", op, c.state, apperr.ErrInvalidState)
	}
	return nil
}

// CheckVersion announces the client's protocol version. A rejection is an
// *apperr.IncompatibleProtocolError.
func (c *Client) CheckVersion(ctx context.Context) error {
	if err := c.require("check version", Unauthenticated); err != nil {
		return err
	}
	ok, err := c.users.CheckVersion(ctx, c.cfg.ClientName, edam.VersionMajor, edam.VersionMinor)
	if err != nil {
		return fmt.Errorf("session: check version: %w", err)
	}
	if !ok {
		return &apperr.IncompatibleProtocolError{
			ClientName: c.cfg.ClientName,
			Major:      edam.VersionMajor,
			Minor:      edam.VersionMinor,
		}
	}
	c.state = VersionChecked
	return nil
}

// Authenticate obtains the token and the user's shard. A rejection by the
// service is an *apperr.AuthenticationError.
func (c *Client) Authenticate(ctx context.Context) error {
	if err := c.require("authenticate", VersionChecked); err != nil {
		return err
	}
	cred := c.cfg.Credentials

	var (
		token string
		user  *edam.User
		err   error
	)
	if cred.DeveloperToken != "" {
		token = cred.DeveloperToken
		user, err = c.users.GetUser(ctx, token)
	} else {
		var res *edam.AuthenticationResult
		res, err = c.users.Authenticate(ctx, cred.Username, cred.Password, cred.ConsumerKey, cred.ConsumerSecret)
		if res != nil {
			token, user = res.AuthenticationToken, res.User
		}
	}
	if err != nil {
		var ue *edam.UserException
		if errors.As(err, &ue) {
			return &apperr.AuthenticationError{
				Code:      ue.ErrorCode.String(),
				Parameter: edam.Deref(ue.Parameter),
				Err:       ue,
			}
		}
		return fmt.Errorf("session: authenticate: %w", err)
	}
	if user == nil || edam.Deref(user.ShardID) == "" {
		return fmt.Errorf("session: authenticate: response carries no shard id")
	}

	c.token = token
	c.user = models.User{
		ID:       edam.Deref(user.ID),
		Username: edam.Deref(user.Username),
		ShardID:  edam.Deref(user.ShardID),
	}
	c.state = Authenticated
	c.logger.Info("authenticated",
		slog.String("username", c.user.Username),
		slog.String("shard", c.user.ShardID))
	return nil
}

// InitNoteStore connects to the note store of the user's shard.
func (c *Client) InitNoteStore(_ context.Context) error {
	if err := c.require("init note store", Authenticated); err != nil {
		return err
	}
	url := edam.NoteStoreURL(c.cfg.ServiceURL, c.user.ShardID)
	ns, err := c.dialNotes(url)
	if err != nil {
		return fmt.Errorf("session: init note store: %w", err)
	}
	c.notes = ns
	c.state = NoteStoreReady
	return nil
}

// ResolveNotebook returns the notebook named exactly name, or nil when none
// matches.
func (c *Client) ResolveNotebook(ctx context.Context, name string) (*models.Notebook, error) {
	if err := c.require("resolve notebook", NoteStoreReady); err != nil {
		return nil, err
	}
	if c.notebooks == nil {
		list, err := c.notes.ListNotebooks(ctx, c.token)
		if err != nil {
			return nil, fmt.Errorf("session: list notebooks: %w", err)
		}
		c.notebooks = make([]models.Notebook, 0, len(list))
		for _, nb := range list {
			c.notebooks = append(c.notebooks, models.Notebook{GUID: edam.Deref(nb.GUID), Name: edam.Deref(nb.Name)})
		}
	}
	for i := range c.notebooks {
		if c.notebooks[i].Name == name {
			nb := c.notebooks[i]
			return &nb, nil
		}
	}
	return nil, nil
}

// ResolveTag returns the tag named exactly name, or nil when none matches.
func (c *Client) ResolveTag(ctx context.Context, name string) (*models.Tag, error) {
	if err := c.require("resolve tag", NoteStoreReady); err != nil {
		return nil, err
	}
	if c.tags == nil {
		list, err := c.notes.ListTags(ctx, c.token)
		if err != nil {
			return nil, fmt.Errorf("session: list tags: %w", err)
		}
		c.tags = make([]models.Tag, 0, len(list))
		for _, tg := range list {
			c.tags = append(c.tags, models.Tag{GUID: edam.Deref(tg.GUID), Name: edam.Deref(tg.Name)})
		}
	}
	for i := range c.tags {
		if c.tags[i].Name == name {
			tg := c.tags[i]
			return &tg, nil
		}
	}
	return nil, nil
}
