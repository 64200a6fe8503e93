package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/pictnote/internal/notify"
	"github.com/starford/pictnote/internal/uploader"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Evernote EvernoteConfig    `yaml:"evernote"`
	Store    StoreConfig       `yaml:"store"`
	Policy   PolicyConfig      `yaml:"policy"`
	Notify   NotifyConfig      `yaml:"notify"`
	Ledger   LedgerConfig      `yaml:"ledger"`
	Watch    WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Evernote.Validate(); err != nil {
		return fmt.Errorf("evernote: %w", err)
	}
	if err := c.Notify.Validate(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	if c.Policy.SkipUploaded && c.Ledger.Path == "" {
		return fmt.Errorf("policy: skip_uploaded requires ledger.path")
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// TitleFormat is a Go time layout applied to the creation time.
	TitleFormat string     `yaml:"title_format"`
	HTTP        HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.TitleFormat, validation.Required),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds status API configuration. Port 0 disables the server.
type HTTPConfig struct {
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Enabled reports whether the status API should be served.
func (c *HTTPConfig) Enabled() bool {
	return c.Port > 0
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
	)
}

// EvernoteConfig selects the service and the account. Either DeveloperToken
// or the full username/password/consumer set is required.
type EvernoteConfig struct {
	ServiceURL     string        `yaml:"service_url"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	ConsumerKey    string        `yaml:"consumer_key"`
	ConsumerSecret string        `yaml:"consumer_secret"`
	DeveloperToken string        `yaml:"developer_token"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Validate validates the Evernote configuration.
func (c *EvernoteConfig) Validate() error {
	needPassword := c.DeveloperToken == ""
	return validation.ValidateStruct(c,
		validation.Field(&c.ServiceURL, validation.Required, is.URL),
		validation.Field(&c.Username, validation.When(needPassword, validation.Required)),
		validation.Field(&c.Password, validation.When(needPassword, validation.Required)),
		validation.Field(&c.ConsumerKey, validation.When(needPassword, validation.Required)),
		validation.Field(&c.ConsumerSecret, validation.When(needPassword, validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// StoreConfig names the destination notebook and tags. Empty Notebook
// means the account's default notebook.
type StoreConfig struct {
	Notebook string   `yaml:"notebook"`
	Tags     []string `yaml:"tags"`
}

// PolicyConfig holds per-file side effects.
type PolicyConfig struct {
	NotifySuccess   bool `yaml:"notify_success"`
	RemoveOnSuccess bool `yaml:"remove_on_success"`
	ContinueOnError bool `yaml:"continue_on_error"`
	SkipUploaded    bool `yaml:"skip_uploaded"`
}

// NotifyConfig selects the notification backend.
type NotifyConfig struct {
	Backend string `yaml:"backend"`
}

// Validate validates the notify configuration.
func (c *NotifyConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(notify.BackendDesktop, notify.BackendLog)),
	)
}

// LedgerConfig holds the SQLite upload ledger path. Empty disables it.
type LedgerConfig struct {
	Path string `yaml:"path"`
}

// WatchConfig enables watch mode when Dir is set.
type WatchConfig struct {
	Dir          string        `yaml:"dir"`
	Settle       time.Duration `yaml:"settle"`
	ScanExisting bool          `yaml:"scan_existing"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Settle, validation.Min(time.Duration(0))),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:    slog.LevelInfo,
			TitleFormat: uploader.DefaultTitleFormat,
		},
		Evernote: EvernoteConfig{
			ServiceURL: "https://sandbox.evernote.com",
		},
		Policy: PolicyConfig{
			NotifySuccess: true,
		},
		Notify: NotifyConfig{
			Backend: notify.BackendDesktop,
		},
		Ledger: LedgerConfig{
			Path: "./pictnote.db",
		},
		Watch: WatchConfig{
			Settle: 500 * time.Millisecond,
		},
	}
}
