package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/tweetify/internal/annotate"
	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
	"github.com/conneroisu/tweetify/internal/logging"
	"github.com/conneroisu/tweetify/internal/tweet"
	"github.com/conneroisu/tweetify/internal/widget"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, widget.DefaultOptions(), config.Widget.Options)
	assert.Equal(t, "default", config.Widget.Mode)
	assert.Equal(t, FormatHTML, config.Render.Format)
	assert.Equal(t, "strict", config.Render.Overshoot)
	assert.True(t, config.Render.Normalize)
	assert.Equal(t, "UTC", config.Render.Timezone)
	assert.Equal(t, "http://twitter.com", config.Links.Base)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, 300*time.Millisecond, config.Server.Debounce)
	assert.Equal(t, []string{"localhost", "localhost", "127.0.0.1"}, config.Server.AllowedOrigins)
	assert.Equal(t, "info", config.Log.Level)
	assert.Empty(t, config.Source.Path)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(v *viper.Viper)
		expectError bool
		check       func(t *testing.T, c *Config)
	}{
		{
			name: "overrides",
			setup: func(v *viper.Viper) {
				v.Set("widget.screen_name", "alice")
				v.Set("widget.tweet_count", 20)
				v.Set("widget.intents", false)
				v.Set("widget.mode", "medium")
				v.Set("render.format", "json")
				v.Set("render.overshoot", "clamp")
				v.Set("server.port", 3000)
				v.Set("server.allowed_origins", []string{"example.com"})
				v.Set("server.debounce", "1s")
				v.Set("source.path", "testdata/timeline.json")
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "alice", c.Widget.ScreenName)
				assert.Equal(t, 20, c.Widget.TweetCount)
				assert.False(t, c.Widget.Intents)
				assert.True(t, c.Widget.Header)
				assert.Equal(t, "medium", c.Widget.Mode)
				assert.Equal(t, FormatJSON, c.Render.Format)
				assert.Equal(t, 3000, c.Server.Port)
				assert.Equal(t, []string{"example.com"}, c.Server.AllowedOrigins)
				assert.Equal(t, time.Second, c.Server.Debounce)
				assert.Equal(t, "testdata/timeline.json", c.Source.Path)
			},
		},
		{name: "invalid port type", setup: func(v *viper.Viper) { v.Set("server.port", "invalid_port") }, expectError: true},
		{name: "port out of range", setup: func(v *viper.Viper) { v.Set("server.port", 70000) }, expectError: true},
		{name: "dangerous host", setup: func(v *viper.Viper) { v.Set("server.host", "localhost;rm") }, expectError: true},
		{name: "tweet count zero", setup: func(v *viper.Viper) { v.Set("widget.tweet_count", 0) }, expectError: true},
		{name: "tweet count too high", setup: func(v *viper.Viper) { v.Set("widget.tweet_count", 201) }, expectError: true},
		{name: "unknown mode", setup: func(v *viper.Viper) { v.Set("widget.mode", "compact") }, expectError: true},
		{name: "unknown format", setup: func(v *viper.Viper) { v.Set("render.format", "xml") }, expectError: true},
		{name: "unknown overshoot", setup: func(v *viper.Viper) { v.Set("render.overshoot", "truncate") }, expectError: true},
		{name: "unknown timezone", setup: func(v *viper.Viper) { v.Set("render.timezone", "Mars/Olympus") }, expectError: true},
		{name: "relative links base", setup: func(v *viper.Viper) { v.Set("links.base", "/twitter") }, expectError: true},
		{name: "ftp links base", setup: func(v *viper.Viper) { v.Set("links.base", "ftp://twitter.com") }, expectError: true},
		{name: "source traversal", setup: func(v *viper.Viper) { v.Set("source.path", "../../etc/passwd") }, expectError: true},
		{name: "unknown log level", setup: func(v *viper.Viper) { v.Set("log.level", "loud") }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			tt.setup(v)

			config, err := LoadFrom(v)
			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, config)
				assert.Equal(t, tweeterrors.ErrorTypeConfig, tweeterrors.GetErrorType(err))
				return
			}
			require.NoError(t, err)
			tt.check(t, config)
		})
	}
}

func TestLoadFromFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName+".yml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"widget:",
		"  screen_name: alice",
		"  avatars: false",
		"render:",
		"  timezone: Europe/Prague",
		"links:",
		"  base: https://x.com",
	}, "\n")), 0o600))

	t.Setenv("TWEETIFY_SERVER_PORT", "9090")
	t.Setenv("TWEETIFY_WIDGET_TWEET_COUNT", "12")

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	require.NoError(t, v.ReadInConfig())

	config, err := LoadFrom(v)
	require.NoError(t, err)

	assert.Equal(t, "alice", config.Widget.ScreenName)
	assert.False(t, config.Widget.Avatars)
	assert.Equal(t, 12, config.Widget.TweetCount)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "Europe/Prague", config.Location().String())
	assert.Equal(t, "https://x.com/alice", config.LinkBuilder().UserURL("alice", ""))
}

func TestAnnotatorFromConfig(t *testing.T) {
	v := viper.New()
	v.Set("render.overshoot", "clamp")
	v.Set("render.normalize", false)
	v.Set("links.base", "https://x.com")

	config, err := LoadFrom(v)
	require.NoError(t, err)

	a := config.Annotator(logging.NewNop())
	assert.Equal(t, annotate.OvershootClamp, a.Overshoot)
	assert.False(t, a.Normalize)
	assert.Equal(t, "https://x.com", a.Renderer.Links.Base)
}

func TestNewWidgetAppliesMode(t *testing.T) {
	v := viper.New()
	v.Set("widget.screen_name", "alice")
	v.Set("widget.mode", "minimal")
	v.Set("render.timezone", "Asia/Tokyo")

	config, err := LoadFrom(v)
	require.NoError(t, err)

	w := config.NewWidget(logging.NewNop())
	assert.False(t, w.Options.Header)
	assert.False(t, w.Options.Avatars)
	assert.False(t, w.Options.Intents)
	assert.Equal(t, "alice", w.Options.ScreenName)
	assert.Equal(t, "Asia/Tokyo", w.Times.Location.String())

	frags, err := w.Build([]tweet.Status{{Tweet: tweet.Tweet{Text: "hi"}}})
	require.NoError(t, err)
	assert.Len(t, frags, 1)
}

func TestValidatePath(t *testing.T) {
	assert.NoError(t, validatePath("timeline.json"))
	assert.NoError(t, validatePath("/var/lib/tweetify/timeline.json"))
	assert.Error(t, validatePath("../timeline.json"))
	assert.Error(t, validatePath("timeline.json;rm -rf"))
}
