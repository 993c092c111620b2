// Package links builds the twitter.com URLs the renderer and the widget
// point at: profiles, statuses, hashtag searches and web intents.
package links

import (
	"net/url"
	"strings"

	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
)

// DefaultBase is the origin every URL is built on unless a Builder says otherwise.
const DefaultBase = "http://twitter.com"

// Intent is a web intent action for a status.
type Intent string

const (
	IntentReply    Intent = "reply"
	IntentRetweet  Intent = "retweet"
	IntentFavorite Intent = "favorite"
)

// Intents lists the supported actions in display order.
var Intents = []Intent{IntentReply, IntentRetweet, IntentFavorite}

// ParseIntent converts a user supplied action name into an Intent.
func ParseIntent(s string) (Intent, error) {
	switch i := Intent(strings.ToLower(strings.TrimSpace(s))); i {
	case IntentReply, IntentRetweet, IntentFavorite:
		return i, nil
	default:
		return "", tweeterrors.NewUnrecognizedIntentError(s)
	}
}

// Builder templates URLs against Base. The zero value uses DefaultBase.
type Builder struct {
	Base string
}

func (b Builder) base() string {
	if b.Base == "" {
		return DefaultBase
	}
	return strings.TrimRight(b.Base, "/")
}

// UserURL returns the profile URL for user, or the status URL when status
// is not empty.
func (b Builder) UserURL(user, status string) string {
	u := b.base() + "/" + user
	if status != "" {
		u += "/statuses/" + status
	}
	return u
}

// IntentURL returns the web intent URL for acting on status.
func (b Builder) IntentURL(status string, action Intent) (string, error) {
	switch action {
	case IntentReply:
		return b.base() + "/intent/tweet?in_reply_to=" + status, nil
	case IntentRetweet:
		return b.base() + "/intent/retweet?tweet_id=" + status, nil
	case IntentFavorite:
		return b.base() + "/intent/favorite?tweet_id=" + status, nil
	default:
		return "", tweeterrors.NewUnrecognizedIntentError(string(action)).
			WithContext("status", status)
	}
}

// SearchURL returns the search URL for a hashtag. The '#' is sent as %23.
func (b Builder) SearchURL(tag string) string {
	return b.base() + "/search/?q=%23" + url.QueryEscape(tag)
}

var defaultBuilder Builder

// UserURL builds a profile or status URL on DefaultBase.
func UserURL(user, status string) string {
	return defaultBuilder.UserURL(user, status)
}

// IntentURL builds an intent URL on DefaultBase.
func IntentURL(status string, action Intent) (string, error) {
	return defaultBuilder.IntentURL(status, action)
}

// SearchURL builds a hashtag search URL on DefaultBase.
func SearchURL(tag string) string {
	return defaultBuilder.SearchURL(tag)
}

// AvatarURL swaps the 48px "_normal." profile image for the larger
// "_reasonably_small." variant.
func AvatarURL(u string) string {
	return strings.Replace(u, "_normal.", "_reasonably_small.", 1)
}
