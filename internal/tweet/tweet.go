// Package tweet defines the values the annotator works on: a tweet's text
// and the entities Twitter reported for it.
//
// All offsets are code-point indices into Text, matching the indexing
// convention of the Twitter REST API. Values are immutable once built and
// are safe to share between goroutines.
package tweet

import (
	"fmt"

	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
)

// Kind identifies an entity variant.
type Kind int

const (
	KindMention Kind = iota
	KindHashtag
	KindLink
	KindMedia
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindMention:
		return "mention"
	case KindHashtag:
		return "hashtag"
	case KindLink:
		return "link"
	case KindMedia:
		return "media"
	default:
		return "unknown"
	}
}

// Entity is one annotation over a span of tweet text. The set of
// implementations is closed: Mention, Hashtag, Link and Media.
type Entity interface {
	Offset() int
	Kind() Kind
	isEntity()
}

// Mention is an @screen_name reference. Start points at the '@'.
type Mention struct {
	Start       int    `json:"start" yaml:"start"`
	ScreenName  string `json:"screen_name" yaml:"screen_name"`
	DisplayName string `json:"name" yaml:"name"`
}

// Hashtag is a #tag reference. Start points at the '#'.
type Hashtag struct {
	Start int    `json:"start" yaml:"start"`
	Text  string `json:"text" yaml:"text"`
}

// Link is a shortened URL. DisplayURL and ExpandedURL are optional.
type Link struct {
	Start       int    `json:"start" yaml:"start"`
	URL         string `json:"url" yaml:"url"`
	DisplayURL  string `json:"display_url,omitempty" yaml:"display_url,omitempty"`
	ExpandedURL string `json:"expanded_url,omitempty" yaml:"expanded_url,omitempty"`
}

// Media is an attached photo or video referenced by a shortened URL. Type
// is the media kind reported by Twitter, e.g. "photo".
type Media struct {
	Start       int    `json:"start" yaml:"start"`
	URL         string `json:"url" yaml:"url"`
	DisplayURL  string `json:"display_url,omitempty" yaml:"display_url,omitempty"`
	ExpandedURL string `json:"expanded_url,omitempty" yaml:"expanded_url,omitempty"`
	Type        string `json:"type" yaml:"type"`
	AssetURL    string `json:"media_url" yaml:"media_url"`
}

func (m Mention) Offset() int { return m.Start }
func (h Hashtag) Offset() int { return h.Start }
func (l Link) Offset() int    { return l.Start }
func (m Media) Offset() int   { return m.Start }

func (Mention) Kind() Kind { return KindMention }
func (Hashtag) Kind() Kind { return KindHashtag }
func (Link) Kind() Kind    { return KindLink }
func (Media) Kind() Kind   { return KindMedia }

func (Mention) isEntity() {}
func (Hashtag) isEntity() {}
func (Link) isEntity()    {}
func (Media) isEntity()   {}

// EntityBag holds the entities of one tweet grouped by kind. Order within
// a group is irrelevant. Media is nil when the tweet carried none.
type EntityBag struct {
	Mentions []Mention `json:"user_mentions" yaml:"user_mentions"`
	Hashtags []Hashtag `json:"hashtags" yaml:"hashtags"`
	URLs     []Link    `json:"urls" yaml:"urls"`
	Media    []Media   `json:"media,omitempty" yaml:"media,omitempty"`
}

// Len returns the total number of entities in the bag.
func (b *EntityBag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Mentions) + len(b.Hashtags) + len(b.URLs) + len(b.Media)
}

// Each calls fn for every entity in registration order: mentions, then
// hashtags, then links, then media.
func (b *EntityBag) Each(fn func(Entity)) {
	if b == nil {
		return
	}
	for _, m := range b.Mentions {
		fn(m)
	}
	for _, h := range b.Hashtags {
		fn(h)
	}
	for _, l := range b.URLs {
		fn(l)
	}
	for _, m := range b.Media {
		fn(m)
	}
}

// Tweet is the text of a status plus its entities. A nil Entities means
// the bag was absent and the text renders verbatim.
type Tweet struct {
	Text     string     `json:"text" yaml:"text"`
	Entities *EntityBag `json:"entities,omitempty" yaml:"entities,omitempty"`
}

// Validate rejects entities that the renderer cannot handle. The annotator
// itself does not validate beyond what it needs to terminate.
func (t Tweet) Validate() error {
	var err error
	t.Entities.Each(func(e Entity) {
		if err != nil {
			return
		}
		err = validateEntity(e)
	})
	return err
}

func validateEntity(e Entity) error {
	if e.Offset() < 0 {
		return malformed(e, "negative start offset")
	}
	switch v := e.(type) {
	case Mention:
		if v.ScreenName == "" {
			return malformed(e, "missing screen_name")
		}
	case Hashtag:
		if v.Text == "" {
			return malformed(e, "missing text")
		}
	case Link:
		if v.URL == "" {
			return malformed(e, "missing url")
		}
	case Media:
		if v.URL == "" {
			return malformed(e, "missing url")
		}
		if v.Type == "" {
			return malformed(e, "missing type")
		}
		if v.AssetURL == "" {
			return malformed(e, "missing media_url")
		}
	}
	return nil
}

func malformed(e Entity, reason string) error {
	return tweeterrors.NewMalformedEntityError(fmt.Sprintf("%s at offset %d: %s", e.Kind(), e.Offset(), reason)).
		WithContext("kind", e.Kind().String()).
		WithContext("offset", e.Offset())
}

// User is the author of a status.
type User struct {
	ID         string `json:"id" yaml:"id"`
	ScreenName string `json:"screen_name" yaml:"screen_name"`
	Name       string `json:"name" yaml:"name"`
	AvatarURL  string `json:"avatar_url" yaml:"avatar_url"`
}

// Status is a timeline entry: a tweet plus the envelope fields the widget
// needs to lay it out.
type Status struct {
	ID        string `json:"id" yaml:"id"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
	Author    User   `json:"user" yaml:"user"`
	InReplyTo string `json:"in_reply_to,omitempty" yaml:"in_reply_to,omitempty"`
	Retweet   bool   `json:"retweet" yaml:"retweet"`
	Tweet     Tweet  `json:"tweet" yaml:"tweet"`
}

// IsReply reports whether the status answers another user.
func (s Status) IsReply() bool {
	return s.InReplyTo != ""
}
