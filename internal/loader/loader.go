// Package loader decodes Twitter REST API timeline JSON into statuses the
// annotator can render. It reads what is already on disk or on stdin and
// never talks to the network.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/ChimeraCoder/anaconda"
	"github.com/microcosm-cc/bluemonday"

	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
	"github.com/conneroisu/tweetify/internal/logging"
	"github.com/conneroisu/tweetify/internal/tweet"
)

// wireText is read in a second pass over each status. anaconda.Tweet
// decodes itself, so the raw entities object (needed to tell a missing bag
// apart from an empty one) and the verbatim text fields come from here.
type wireText struct {
	Text     string          `json:"text"`
	FullText string          `json:"full_text"`
	Entities json.RawMessage `json:"entities"`
}

type wireTweet struct {
	api  anaconda.Tweet
	text wireText
}

func decodeWire(doc json.RawMessage) (wireTweet, error) {
	var w wireTweet
	if err := json.Unmarshal(doc, &w.api); err != nil {
		return w, err
	}
	if err := json.Unmarshal(doc, &w.text); err != nil {
		return w, err
	}
	return w, nil
}

// Loader decodes timelines. The zero value is ready to use.
type Loader struct {
	Logger logging.Logger
}

// Decode reads a JSON array of tweets, as returned by
// statuses/user_timeline, or a single tweet object.
func (l Loader) Decode(r io.Reader) ([]tweet.Status, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, tweeterrors.WrapIO(err, "reading timeline")
	}
	return l.DecodeBytes(data)
}

// DecodeBytes is Decode over an in-memory document.
func (l Loader) DecodeBytes(data []byte) ([]tweet.Status, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, tweeterrors.WrapDecode(io.ErrUnexpectedEOF, "decoding timeline: empty document")
	}

	docs := []json.RawMessage{data}
	if data[0] == '[' {
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, tweeterrors.WrapDecode(err, "decoding timeline")
		}
	}

	statuses := make([]tweet.Status, 0, len(docs))
	for i, doc := range docs {
		w, err := decodeWire(doc)
		if err != nil {
			return nil, tweeterrors.WrapDecode(err, fmt.Sprintf("decoding status %d", i))
		}
		st, err := convert(&w)
		if err != nil {
			return nil, tweeterrors.WrapDecode(err, fmt.Sprintf("decoding status %d (%s)", i, w.api.IdStr))
		}
		statuses = append(statuses, st)
	}

	l.logger().Debug(context.Background(), "Decoded timeline", "statuses", len(statuses))
	return statuses, nil
}

// LoadFile decodes the timeline stored at path.
func (l Loader) LoadFile(path string) ([]tweet.Status, error) {
	ctx := context.Background()
	op := l.logger().StartOperation("load_timeline")

	f, err := os.Open(path)
	if err != nil {
		err = tweeterrors.WrapIO(err, "opening timeline").WithContext("path", path)
		op.EndWithError(ctx, err)
		return nil, err
	}
	defer f.Close()

	statuses, err := l.Decode(f)
	if err != nil {
		op.EndWithError(ctx, err)
		return nil, err
	}
	op.End(ctx, "path", path, "statuses", len(statuses))
	return statuses, nil
}

func (l Loader) logger() logging.Logger {
	if l.Logger == nil {
		return logging.NewNop()
	}
	return l.Logger
}

// Decode decodes a timeline with the default Loader.
func Decode(r io.Reader) ([]tweet.Status, error) {
	return Loader{}.Decode(r)
}

// LoadFile loads a timeline file with the default Loader.
func LoadFile(path string) ([]tweet.Status, error) {
	return Loader{}.LoadFile(path)
}

func convert(w *wireTweet) (tweet.Status, error) {
	text := w.text.Text
	if w.text.FullText != "" {
		text = w.text.FullText
	}

	bag, err := convertEntities(w.text.Entities)
	if err != nil {
		return tweet.Status{}, err
	}

	t := tweet.Tweet{Text: text, Entities: bag}
	if err := t.Validate(); err != nil {
		return tweet.Status{}, err
	}

	api := &w.api
	return tweet.Status{
		ID:        api.IdStr,
		CreatedAt: api.CreatedAt,
		Author: tweet.User{
			ID:         api.User.IdStr,
			ScreenName: stripTags(api.User.ScreenName),
			Name:       stripTags(api.User.Name),
			AvatarURL:  api.User.ProfileImageURL,
		},
		InReplyTo: api.InReplyToScreenName,
		Retweet:   api.RetweetedStatus != nil,
		Tweet:     t,
	}, nil
}

func convertEntities(raw json.RawMessage) (*tweet.EntityBag, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var ents anaconda.Entities
	if err := json.Unmarshal(raw, &ents); err != nil {
		return nil, tweeterrors.WrapEntity(err, "decoding entities")
	}

	bag := &tweet.EntityBag{}
	for _, m := range ents.User_mentions {
		start, err := startIndex(m.Indices, tweet.KindMention)
		if err != nil {
			return nil, err
		}
		bag.Mentions = append(bag.Mentions, tweet.Mention{
			Start:       start,
			ScreenName:  stripTags(m.Screen_name),
			DisplayName: stripTags(m.Name),
		})
	}
	for _, h := range ents.Hashtags {
		start, err := startIndex(h.Indices, tweet.KindHashtag)
		if err != nil {
			return nil, err
		}
		bag.Hashtags = append(bag.Hashtags, tweet.Hashtag{Start: start, Text: h.Text})
	}
	for _, u := range ents.Urls {
		start, err := startIndex(u.Indices, tweet.KindLink)
		if err != nil {
			return nil, err
		}
		bag.URLs = append(bag.URLs, tweet.Link{
			Start:       start,
			URL:         u.Url,
			DisplayURL:  u.Display_url,
			ExpandedURL: u.Expanded_url,
		})
	}
	for _, m := range ents.Media {
		start, err := startIndex(m.Indices, tweet.KindMedia)
		if err != nil {
			return nil, err
		}
		bag.Media = append(bag.Media, tweet.Media{
			Start:       start,
			URL:         m.Url,
			DisplayURL:  m.Display_url,
			ExpandedURL: m.Expanded_url,
			Type:        m.Type,
			AssetURL:    m.Media_url,
		})
	}
	return bag, nil
}

// startIndex reads indices[0]. The end offset is never used.
func startIndex(indices []int, kind tweet.Kind) (int, error) {
	if len(indices) == 0 {
		return 0, tweeterrors.NewMalformedEntityError(fmt.Sprintf("%s entity has no indices", kind)).
			WithContext("kind", kind.String())
	}
	return indices[0], nil
}

var tagStripper = bluemonday.StrictPolicy()

// stripTags removes any markup from a user supplied name.
func stripTags(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagStripper.Sanitize(s)))
}
