package annotate

import (
	"fmt"
	"unicode/utf8"

	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
	"github.com/conneroisu/tweetify/internal/links"
	"github.com/conneroisu/tweetify/internal/markup"
	"github.com/conneroisu/tweetify/internal/tweet"
)

// CSS classes put on rendered entities.
const (
	ClassMention = "mention"
	ClassHashtag = "hashtag"
	ClassLink    = "link"
	ClassMedia   = "media"
)

// Renderer maps a single entity to its markup.
type Renderer struct {
	Links links.Builder
}

// Render returns the fragment for e and the number of code points of the
// source text it covers.
//
// Mentions and hashtags cover their name plus the leading '@' or '#'.
// Links and media cover the full raw URL.
func (r Renderer) Render(e tweet.Entity) (markup.Fragment, int, error) {
	var (
		frag  markup.Fragment
		width int
	)

	switch v := e.(type) {
	case tweet.Mention:
		frag, width = r.mention(v)
	case tweet.Hashtag:
		frag, width = r.hashtag(v)
	case tweet.Link:
		frag, width = r.link(v)
	case tweet.Media:
		frag, width = r.media(v)
	default:
		return markup.Fragment{}, 0, tweeterrors.NewInternalError(
			tweeterrors.CodeUnknownEntityKind,
			fmt.Sprintf("cannot render entity of type %T", e),
			nil,
		)
	}

	if width < 1 {
		return markup.Fragment{}, 0, tweeterrors.NewMalformedEntityError(
			fmt.Sprintf("%s at offset %d covers no text", e.Kind(), e.Offset()),
		).WithContext("kind", e.Kind().String()).WithContext("offset", e.Offset())
	}
	return frag, width, nil
}

func (r Renderer) mention(m tweet.Mention) (markup.Fragment, int) {
	anchor := markup.Element("a").
		WithHref(r.Links.UserURL(m.ScreenName, "")).
		WithTarget(markup.TargetNewContext).
		WithTitle(m.DisplayName + " - @" + m.ScreenName).
		WithText(m.ScreenName)

	frag := markup.Element("span", ClassMention).
		WithChildren(markup.Literal("@"), anchor)

	return frag, utf8.RuneCountInString(m.ScreenName) + 1
}

func (r Renderer) hashtag(h tweet.Hashtag) (markup.Fragment, int) {
	frag := markup.Element("a", ClassHashtag).
		WithHref(r.Links.SearchURL(h.Text)).
		WithTarget(markup.TargetNewContext).
		WithText("#" + h.Text)

	return frag, utf8.RuneCountInString(h.Text) + 1
}

func (r Renderer) link(l tweet.Link) (markup.Fragment, int) {
	frag := urlAnchor(l.URL, l.DisplayURL, l.ExpandedURL, ClassLink)
	return frag, utf8.RuneCountInString(l.URL)
}

func (r Renderer) media(m tweet.Media) (markup.Fragment, int) {
	frag := urlAnchor(m.URL, m.DisplayURL, m.ExpandedURL, ClassLink, ClassMedia, ClassMedia+"-"+m.Type).
		WithData("media-url", m.AssetURL).
		WithData("media-type", m.Type)
	return frag, utf8.RuneCountInString(m.URL)
}

func urlAnchor(raw, display, expanded string, classes ...string) markup.Fragment {
	if display == "" {
		display = raw
	}
	if expanded == "" {
		expanded = raw
	}
	return markup.Element("a", classes...).
		WithHref(raw).
		WithTarget(markup.TargetNewContext).
		WithTitle(expanded).
		WithText(display)
}
