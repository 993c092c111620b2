package annotate

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
	"github.com/conneroisu/tweetify/internal/logging"
	"github.com/conneroisu/tweetify/internal/markup"
	"github.com/conneroisu/tweetify/internal/tweet"
)

// OvershootPolicy decides what happens when an entity claims more code
// points than remain in the text.
type OvershootPolicy int

const (
	// OvershootStrict rejects the tweet with a malformed entity error.
	OvershootStrict OvershootPolicy = iota
	// OvershootClamp keeps the rendered entity and ends the walk.
	OvershootClamp
)

// String returns the string representation of the policy
func (p OvershootPolicy) String() string {
	switch p {
	case OvershootStrict:
		return "strict"
	case OvershootClamp:
		return "clamp"
	default:
		return "unknown"
	}
}

// ParseOvershootPolicy converts a flag or config value into a policy.
func ParseOvershootPolicy(s string) (OvershootPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return OvershootStrict, nil
	case "clamp":
		return OvershootClamp, nil
	default:
		return OvershootStrict, tweeterrors.NewValidationError(
			tweeterrors.CodeInvalidOption,
			fmt.Sprintf("unknown overshoot policy %q (supported: strict, clamp)", s),
		)
	}
}

// Stats describes how an annotation pass covered the text.
type Stats struct {
	// Length is the code-point length of the annotated text.
	Length int
	// Literal is the number of code points emitted as literal text.
	Literal int
	// Consumed is the total width covered by rendered entities.
	Consumed int
	// Entities is the number of entities rendered.
	Entities int
	// Clamped is set when an overshooting entity ended the walk early.
	Clamped bool
}

// Covered reports whether every code point was accounted for exactly once.
func (s Stats) Covered() bool {
	return s.Literal+s.Consumed == s.Length
}

// Annotator walks tweet text and replaces entity spans with markup. The
// zero value renders against twitter.com with the strict overshoot policy.
type Annotator struct {
	Renderer  Renderer
	Overshoot OvershootPolicy
	// Normalize applies NFC to the text before walking it, which is how
	// Twitter counts characters when computing entity offsets. A tweet
	// without an entity bag is returned verbatim and never normalized.
	Normalize bool
	Logger    logging.Logger
}

// Annotate renders t. A tweet without an entity bag comes back as a single
// literal fragment holding the text unchanged.
func (a Annotator) Annotate(t tweet.Tweet) ([]markup.Fragment, error) {
	frags, _, err := a.AnnotateWithStats(t)
	return frags, err
}

// AnnotateWithStats is Annotate plus coverage figures for the pass.
func (a Annotator) AnnotateWithStats(t tweet.Tweet) ([]markup.Fragment, Stats, error) {
	if t.Entities == nil {
		n := utf8.RuneCountInString(t.Text)
		return []markup.Fragment{markup.Literal(t.Text)}, Stats{Length: n, Literal: n}, nil
	}

	text := t.Text
	if a.Normalize {
		text = norm.NFC.String(text)
	}
	return a.walk(text, BuildIndex(t.Entities))
}

// AnnotateText walks text against a prebuilt index using the default
// Annotator.
func AnnotateText(text string, idx *SpanIndex) ([]markup.Fragment, error) {
	frags, _, err := Annotator{}.walk(text, idx)
	return frags, err
}

func (a Annotator) walk(text string, idx *SpanIndex) ([]markup.Fragment, Stats, error) {
	runes := []rune(text)
	n := len(runes)
	stats := Stats{Length: n}
	frags := make([]markup.Fragment, 0, 2*idx.Len()+1)

	litStart := 0
	flush := func(end int) {
		if end > litStart {
			frags = append(frags, markup.Literal(string(runes[litStart:end])))
			stats.Literal += end - litStart
		}
	}

	for i := 0; i < n; {
		e, ok := idx.Lookup(i)
		if !ok {
			i++
			continue
		}

		flush(i)
		frag, width, err := a.Renderer.Render(e)
		if err != nil {
			return nil, stats, err
		}

		if i+width > n {
			if a.Overshoot != OvershootClamp {
				return nil, stats, tweeterrors.NewMalformedEntityError(
					fmt.Sprintf("%s at offset %d is %d code points wide but only %d remain", e.Kind(), i, width, n-i),
				).WithContext("kind", e.Kind().String()).WithContext("offset", i)
			}
			a.logger().Warn(context.Background(), nil, "Entity overshoots text, clamping",
				"kind", e.Kind().String(), "offset", i, "width", width, "remaining", n-i)
			width = n - i
			stats.Clamped = true
		}

		frags = append(frags, frag)
		stats.Consumed += width
		stats.Entities++
		i += width
		litStart = i
	}
	flush(n)

	return frags, stats, nil
}

func (a Annotator) logger() logging.Logger {
	if a.Logger == nil {
		return logging.NewNop()
	}
	return a.Logger
}
