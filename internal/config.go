package internal

import (
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/raido/internal/posttype"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Vault    VaultConfig       `yaml:"vault"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
	Micropub MicropubConfig    `yaml:"micropub"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	return c.Micropub.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	// BaseURL is the public site URL post locations are built from.
	BaseURL string `yaml:"base_url"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.RequestURL),
	); err != nil {
		return err
	}
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// VaultConfig holds the path to the directory posts are written to.
type VaultConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// MicropubConfig controls how incoming posts are stored.
type MicropubConfig struct {
	// DefaultTemplate is used for every post type without an override.
	DefaultTemplate string `yaml:"default_template"`
	// Templates maps post type names (note, article, reply, ...) to templates.
	Templates map[string]string `yaml:"templates"`
	// PublishImmediately creates posts as published rather than drafts.
	PublishImmediately bool `yaml:"publish_immediately"`
	// WrapRoot wraps post bodies in the microformat root element,
	// e.g. <div class="h-entry">.
	WrapRoot bool `yaml:"wrap_root"`
	// VerboseLogging logs every request and resulting post at info level.
	VerboseLogging bool `yaml:"verbose_logging"`
	// TokenEndpoint is an external IndieAuth token endpoint. Not used yet.
	TokenEndpoint string `yaml:"token_endpoint"`
}

// Validate validates the micropub configuration.
func (c *MicropubConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultTemplate, validation.Required),
		validation.Field(&c.Templates, validation.By(validPostTypeKeys)),
		validation.Field(&c.TokenEndpoint, is.RequestURL),
	)
}

func validPostTypeKeys(value any) error {
	templates, _ := value.(map[string]string)
	for name := range templates {
		if _, err := posttype.Parse(name); err != nil {
			return fmt.Errorf("unknown post type %q", name)
		}
	}
	return nil
}

// TemplateConfig returns the template mapping used when publishing.
func (c *MicropubConfig) TemplateConfig() posttype.TemplateConfig {
	overrides := make(map[posttype.Type]string, len(c.Templates))
	for name, tmpl := range c.Templates {
		t, err := posttype.Parse(name)
		if err != nil {
			continue
		}
		overrides[t] = strings.TrimSpace(tmpl)
	}
	return posttype.TemplateConfig{
		Default:   c.DefaultTemplate,
		Overrides: overrides,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			BaseURL: "http://localhost:8080",
		},
		Vault: VaultConfig{
			Path: "./vault",
		},
		SQLite: SQLiteConfig{
			Path: "./raido.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Micropub: MicropubConfig{
			DefaultTemplate: posttype.DefaultTemplate,
			WrapRoot:        true,
		},
	}
}
