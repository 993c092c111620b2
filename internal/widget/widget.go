// Package widget lays a decoded timeline out as the TwitterControl block:
// an optional profile header followed by a list of annotated statuses with
// their relative times and intent links.
package widget

import (
	"context"
	"fmt"
	"time"

	"github.com/a-h/templ"

	"github.com/conneroisu/tweetify/internal/annotate"
	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
	"github.com/conneroisu/tweetify/internal/links"
	"github.com/conneroisu/tweetify/internal/logging"
	"github.com/conneroisu/tweetify/internal/markup"
	"github.com/conneroisu/tweetify/internal/timeago"
	"github.com/conneroisu/tweetify/internal/tweet"
)

// RootClass marks the outermost element of the widget.
const RootClass = "TwitterControl"

var intentLabels = map[links.Intent]string{
	links.IntentReply:    "Reply",
	links.IntentRetweet:  "Retweet",
	links.IntentFavorite: "Favorite",
}

// Widget renders timelines. Now defaults to time.Now.
type Widget struct {
	Options   Options
	Annotator annotate.Annotator
	Times     timeago.Formatter
	Links     links.Builder
	Now       func() time.Time
	Logger    logging.Logger
}

// New returns a widget for opts that builds links against lb.
func New(opts Options, lb links.Builder) *Widget {
	return &Widget{
		Options:   opts,
		Annotator: annotate.Annotator{Renderer: annotate.Renderer{Links: lb}},
		Links:     lb,
	}
}

// Filter drops retweets and replies the options exclude and keeps at most
// TweetCount statuses.
func (w *Widget) Filter(statuses []tweet.Status) []tweet.Status {
	out := make([]tweet.Status, 0, len(statuses))
	for _, s := range statuses {
		if s.Retweet && !w.Options.Retweets {
			continue
		}
		if s.IsReply() && !w.Options.Replies {
			continue
		}
		out = append(out, s)
		if w.Options.TweetCount > 0 && len(out) == w.Options.TweetCount {
			break
		}
	}
	return out
}

// Build filters statuses and returns the widget markup.
func (w *Widget) Build(statuses []tweet.Status) ([]markup.Fragment, error) {
	shown := w.Filter(statuses)
	now := w.now()

	root := markup.Element("div", RootClass)
	if w.Options.Header {
		root = root.WithChildren(w.header(statuses))
	}

	list := markup.Element("ul", "tweets")
	for _, s := range shown {
		item, err := w.item(s, now)
		if err != nil {
			return nil, err
		}
		list = list.WithChildren(item)
	}
	root = root.WithChildren(list)

	w.logger().Debug(context.Background(), "Built widget",
		"statuses", len(statuses), "shown", len(shown))
	return []markup.Fragment{root}, nil
}

// StatusFragments is the annotated text of one status.
type StatusFragments struct {
	ID        string            `json:"id" yaml:"id"`
	Fragments []markup.Fragment `json:"fragments" yaml:"fragments"`
}

// Annotated filters statuses and returns only the annotated text of each,
// without the surrounding widget markup.
func (w *Widget) Annotated(statuses []tweet.Status) ([]StatusFragments, error) {
	shown := w.Filter(statuses)
	out := make([]StatusFragments, 0, len(shown))
	for _, s := range shown {
		frags, err := w.Annotator.Annotate(s.Tweet)
		if err != nil {
			return nil, tweeterrors.WrapEntity(err, "annotating status").WithContext("status", s.ID)
		}
		out = append(out, StatusFragments{ID: s.ID, Fragments: frags})
	}
	return out, nil
}

// Component builds statuses into a templ component.
func (w *Widget) Component(statuses []tweet.Status) (templ.Component, error) {
	frags, err := w.Build(statuses)
	if err != nil {
		return nil, err
	}
	return markup.Component(frags...), nil
}

func (w *Widget) header(statuses []tweet.Status) markup.Fragment {
	user := tweet.User{ScreenName: w.Options.ScreenName, ID: w.Options.UserID}
	if len(statuses) > 0 {
		user = statuses[0].Author
	}
	name := user.Name
	if name == "" {
		name = user.ScreenName
	}
	profile := w.Links.UserURL(user.ScreenName, "")

	header := markup.Element("div", "header")
	if user.AvatarURL != "" {
		header = header.WithChildren(
			markup.Element("a", "avatar-link").
				WithHref(profile).
				WithTarget(markup.TargetNewContext).
				WithChildren(avatar(user)),
		)
	}
	return header.WithChildren(
		markup.Element("a", "name").
			WithHref(profile).
			WithTarget(markup.TargetNewContext).
			WithText(name),
		markup.Element("span", "screen-name").WithText("@"+user.ScreenName),
	)
}

func (w *Widget) item(s tweet.Status, now time.Time) (markup.Fragment, error) {
	classes := []string{"tweet"}
	if s.Retweet {
		classes = append(classes, "retweet")
	}
	if s.IsReply() {
		classes = append(classes, "reply")
	}
	li := markup.Element("li", classes...)

	if w.Options.Avatars && s.Author.AvatarURL != "" {
		li = li.WithChildren(
			markup.Element("a", "avatar-link").
				WithHref(w.Links.UserURL(s.Author.ScreenName, "")).
				WithTarget(markup.TargetNewContext).
				WithChildren(avatar(s.Author)),
		)
	}

	text, err := w.Annotator.Annotate(s.Tweet)
	if err != nil {
		return markup.Fragment{}, tweeterrors.WrapEntity(err, fmt.Sprintf("annotating status %s", s.ID)).
			WithContext("status", s.ID)
	}
	li = li.WithChildren(markup.Element("p", "text").WithChildren(text...))

	meta, err := w.meta(s, now)
	if err != nil {
		return markup.Fragment{}, err
	}
	li = li.WithChildren(meta)

	if w.Options.Intents && s.ID != "" {
		intents, err := w.intents(s.ID)
		if err != nil {
			return markup.Fragment{}, err
		}
		li = li.WithChildren(intents)
	}
	return li, nil
}

func (w *Widget) meta(s tweet.Status, now time.Time) (markup.Fragment, error) {
	meta := markup.Element("div", "meta")

	ago, ok, err := w.Times.Format(s.CreatedAt, now)
	if err != nil {
		return markup.Fragment{}, tweeterrors.Wrap(err, tweeterrors.ErrorTypeTime, tweeterrors.CodeInvalidTimestamp,
			fmt.Sprintf("formatting time of status %s", s.ID)).WithContext("status", s.ID)
	}
	if ok {
		meta = meta.WithChildren(
			markup.Element("a", "time").
				WithHref(w.Links.UserURL(s.Author.ScreenName, s.ID)).
				WithTarget(markup.TargetNewContext).
				WithTitle(s.CreatedAt).
				WithText(ago),
		)
	}

	if s.IsReply() {
		meta = meta.WithChildren(
			markup.Literal(" in reply to "),
			markup.Element("a", "in-reply-to").
				WithHref(w.Links.UserURL(s.InReplyTo, "")).
				WithTarget(markup.TargetNewContext).
				WithText("@"+s.InReplyTo),
		)
	}
	return meta, nil
}

func (w *Widget) intents(status string) (markup.Fragment, error) {
	block := markup.Element("div", "intents")
	for _, action := range links.Intents {
		href, err := w.Links.IntentURL(status, action)
		if err != nil {
			return markup.Fragment{}, err
		}
		block = block.WithChildren(
			markup.Element("a", "intent", "intent-"+string(action)).
				WithHref(href).
				WithTarget(markup.TargetNewContext).
				WithText(intentLabels[action]),
		)
	}
	return block, nil
}

func avatar(u tweet.User) markup.Fragment {
	return markup.Element("img", "avatar").
		WithAttr("src", links.AvatarURL(u.AvatarURL)).
		WithAttr("alt", u.ScreenName)
}

func (w *Widget) now() time.Time {
	if w.Now == nil {
		return time.Now()
	}
	return w.Now()
}

func (w *Widget) logger() logging.Logger {
	if w.Logger == nil {
		return logging.NewNop()
	}
	return w.Logger
}
