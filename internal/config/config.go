// Package config loads tweetify settings with Viper from a .tweetify.yml
// file, TWEETIFY_ prefixed environment variables and command-line flags.
//
// The configuration covers the widget options and preset mode, how
// annotated text is rendered, the base URL links are built on, the
// preview server and the timeline source file. Load applies defaults and
// validates every section before handing the result out.
package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/conneroisu/tweetify/internal/annotate"
	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
	"github.com/conneroisu/tweetify/internal/links"
	"github.com/conneroisu/tweetify/internal/logging"
	"github.com/conneroisu/tweetify/internal/timeago"
	"github.com/conneroisu/tweetify/internal/widget"
)

// FileName is the config file looked up in the working and home directories.
const FileName = ".tweetify"

// EnvPrefix prefixes every environment override, e.g. TWEETIFY_SERVER_PORT.
const EnvPrefix = "TWEETIFY"

// Output formats of the render command.
const (
	FormatHTML = "html"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type Config struct {
	Widget WidgetConfig `mapstructure:"widget" yaml:"widget"`
	Render RenderConfig `mapstructure:"render" yaml:"render"`
	Links  LinksConfig  `mapstructure:"links" yaml:"links"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Source SourceConfig `mapstructure:"source" yaml:"source"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

type WidgetConfig struct {
	widget.Options `mapstructure:",squash" yaml:",inline"`
	Mode           string `mapstructure:"mode" yaml:"mode"`
}

type RenderConfig struct {
	Format    string `mapstructure:"format" yaml:"format"`
	Overshoot string `mapstructure:"overshoot" yaml:"overshoot"`
	Normalize bool   `mapstructure:"normalize" yaml:"normalize"`
	Timezone  string `mapstructure:"timezone" yaml:"timezone"`
}

type LinksConfig struct {
	Base string `mapstructure:"base" yaml:"base"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host" yaml:"host"`
	Port           int           `mapstructure:"port" yaml:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	Debounce       time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type SourceConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	opts := widget.DefaultOptions()
	v.SetDefault("widget.screen_name", "")
	v.SetDefault("widget.user_id", "")
	v.SetDefault("widget.tweet_count", opts.TweetCount)
	v.SetDefault("widget.header", opts.Header)
	v.SetDefault("widget.avatars", opts.Avatars)
	v.SetDefault("widget.retweets", opts.Retweets)
	v.SetDefault("widget.replies", opts.Replies)
	v.SetDefault("widget.intents", opts.Intents)
	v.SetDefault("widget.mode", string(widget.ModeDefault))

	v.SetDefault("render.format", FormatHTML)
	v.SetDefault("render.overshoot", annotate.OvershootStrict.String())
	v.SetDefault("render.normalize", true)
	v.SetDefault("render.timezone", "UTC")

	v.SetDefault("links.base", links.DefaultBase)

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debounce", 300*time.Millisecond)

	v.SetDefault("source.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from the global Viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads, defaults and validates the configuration held by v.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, tweeterrors.Wrap(err, tweeterrors.ErrorTypeConfig, tweeterrors.CodeInvalidConfig, "decoding configuration")
	}

	// Handle allowed origins set via viper (workaround for viper slice handling)
	if v.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{config.Server.Host, "localhost", "127.0.0.1"}
	}

	if err := validateConfig(&config); err != nil {
		return nil, tweeterrors.Wrap(err, tweeterrors.ErrorTypeConfig, tweeterrors.CodeInvalidConfig, "invalid configuration")
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateWidgetConfig(&config.Widget); err != nil {
		return fmt.Errorf("widget config: %w", err)
	}
	if err := validateRenderConfig(&config.Render); err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	if err := validateLinksConfig(&config.Links); err != nil {
		return fmt.Errorf("links config: %w", err)
	}
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if config.Source.Path != "" {
		if err := validatePath(config.Source.Path); err != nil {
			return fmt.Errorf("source config: %w", err)
		}
	}
	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

func validateWidgetConfig(config *WidgetConfig) error {
	if config.TweetCount < 1 || config.TweetCount > widget.MaxTweetCount {
		return fmt.Errorf("tweet_count %d is not in valid range 1-%d", config.TweetCount, widget.MaxTweetCount)
	}
	_, err := widget.ParseMode(config.Mode)
	return err
}

func validateRenderConfig(config *RenderConfig) error {
	switch config.Format {
	case FormatHTML, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown format %q (supported: html, json, yaml)", config.Format)
	}
	if _, err := annotate.ParseOvershootPolicy(config.Overshoot); err != nil {
		return err
	}
	if _, err := time.LoadLocation(config.Timezone); err != nil {
		return fmt.Errorf("timezone %q: %w", config.Timezone, err)
	}
	return nil
}

func validateLinksConfig(config *LinksConfig) error {
	u, err := url.Parse(config.Base)
	if err != nil {
		return fmt.Errorf("base %q: %w", config.Base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base %q must be an http or https URL", config.Base)
	}
	if u.Host == "" {
		return fmt.Errorf("base %q has no host", config.Base)
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Validate port range (allow 0 for system-assigned ports in testing)
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	if config.Debounce < 0 {
		return fmt.Errorf("debounce %s is negative", config.Debounce)
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}

// Location returns the time zone relative dates are printed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Render.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LinkBuilder returns the URL builder for the configured base.
func (c *Config) LinkBuilder() links.Builder {
	return links.Builder{Base: c.Links.Base}
}

// Annotator returns an annotator set up from the render section.
func (c *Config) Annotator(logger logging.Logger) annotate.Annotator {
	policy, _ := annotate.ParseOvershootPolicy(c.Render.Overshoot)
	return annotate.Annotator{
		Renderer:  annotate.Renderer{Links: c.LinkBuilder()},
		Overshoot: policy,
		Normalize: c.Render.Normalize,
		Logger:    logger,
	}
}

// NewWidget returns a widget with the configured options and mode applied.
func (c *Config) NewWidget(logger logging.Logger) *widget.Widget {
	mode, _ := widget.ParseMode(c.Widget.Mode)
	return &widget.Widget{
		Options:   mode.Apply(c.Widget.Options),
		Annotator: c.Annotator(logger),
		Times:     timeago.Formatter{Location: c.Location()},
		Links:     c.LinkBuilder(),
		Logger:    logger,
	}
}
