package widget

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
)

// MaxTweetCount is the largest page the user_timeline endpoint serves.
const MaxTweetCount = 200

// TimelineEndpoint is the REST resource a timeline document comes from.
const TimelineEndpoint = "https://api.twitter.com/1/statuses/user_timeline.json"

// Options controls which statuses are shown and which parts of the widget
// are rendered.
type Options struct {
	ScreenName string `mapstructure:"screen_name" json:"screen_name" yaml:"screen_name"`
	UserID     string `mapstructure:"user_id" json:"user_id" yaml:"user_id"`
	TweetCount int    `mapstructure:"tweet_count" json:"tweet_count" yaml:"tweet_count"`

	Header   bool `mapstructure:"header" json:"header" yaml:"header"`
	Avatars  bool `mapstructure:"avatars" json:"avatars" yaml:"avatars"`
	Retweets bool `mapstructure:"retweets" json:"retweets" yaml:"retweets"`
	Replies  bool `mapstructure:"replies" json:"replies" yaml:"replies"`
	Intents  bool `mapstructure:"intents" json:"intents" yaml:"intents"`
}

// DefaultOptions shows five statuses with every part enabled.
func DefaultOptions() Options {
	return Options{
		TweetCount: 5,
		Header:     true,
		Avatars:    true,
		Retweets:   true,
		Replies:    true,
		Intents:    true,
	}
}

// ForUser returns DefaultOptions for a screen name, or for a user ID when
// user is numeric.
func ForUser(user string) Options {
	opts := DefaultOptions()
	if _, err := strconv.ParseUint(user, 10, 64); err == nil {
		opts.UserID = user
	} else {
		opts.ScreenName = user
	}
	return opts
}

// Validate checks that a user is named and the count is in range.
func (o Options) Validate() error {
	if o.ScreenName == "" && o.UserID == "" {
		return tweeterrors.NewValidationError(tweeterrors.CodeInvalidOption, "no screen name or user id specified")
	}
	if o.TweetCount < 1 || o.TweetCount > MaxTweetCount {
		return tweeterrors.NewValidationError(tweeterrors.CodeInvalidOption,
			fmt.Sprintf("tweet count %d out of range 1..%d", o.TweetCount, MaxTweetCount)).
			WithContext("tweet_count", o.TweetCount)
	}
	return nil
}

// RequestURL returns the user_timeline URL that yields the document these
// options describe. The user ID wins over the screen name.
func (o Options) RequestURL() string {
	q := make([]string, 0, 5)
	if o.UserID != "" {
		q = append(q, "user_id="+url.QueryEscape(o.UserID))
	} else if o.ScreenName != "" {
		q = append(q, "screen_name="+url.QueryEscape(o.ScreenName))
	}
	if o.TweetCount > 0 {
		q = append(q, "count="+strconv.Itoa(o.TweetCount))
	}
	if o.Retweets {
		q = append(q, "include_rts=true")
	}
	if !o.Replies {
		q = append(q, "exclude_replies=true")
	}
	q = append(q, "include_entities=true")
	return TimelineEndpoint + "?" + strings.Join(q, "&")
}

// Mode is a preset that overrides the rendering flags.
type Mode string

const (
	// ModeDefault leaves the options as configured.
	ModeDefault Mode = "default"
	// ModeFull turns every part on.
	ModeFull Mode = "full"
	// ModeMedium drops the header and intents.
	ModeMedium Mode = "medium"
	// ModeMinimal drops the header, avatars and intents.
	ModeMinimal Mode = "minimal"
)

// Modes lists the supported presets.
var Modes = []Mode{ModeDefault, ModeFull, ModeMedium, ModeMinimal}

// ParseMode converts a flag or config value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeDefault, nil
	case ModeDefault, ModeFull, ModeMedium, ModeMinimal:
		return m, nil
	default:
		return ModeDefault, tweeterrors.NewValidationError(tweeterrors.CodeInvalidOption,
			fmt.Sprintf("unknown mode %q (supported: default, full, medium, minimal)", s))
	}
}

// Apply returns opts with the preset's flags applied. Retweets and replies
// are switched on by every preset except ModeDefault.
func (m Mode) Apply(opts Options) Options {
	switch m {
	case ModeFull:
		opts.Header, opts.Avatars, opts.Intents = true, true, true
	case ModeMedium:
		opts.Header, opts.Avatars, opts.Intents = false, true, false
	case ModeMinimal:
		opts.Header, opts.Avatars, opts.Intents = false, false, false
	default:
		return opts
	}
	opts.Retweets, opts.Replies = true, true
	return opts
}
