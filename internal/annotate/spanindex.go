// Package annotate turns a tweet's text and entities into a sequence of
// markup fragments.
//
// The work is split in three: a SpanIndex maps start offsets to entities, a
// Renderer maps one entity to a fragment and the number of code points it
// consumes, and an Annotator walks the text by code point stitching literal
// runs and rendered entities together. Everything here is pure and safe for
// concurrent use.
package annotate

import (
	"github.com/conneroisu/tweetify/internal/tweet"
)

// SpanIndex maps a code-point offset to the entity starting there.
//
// When entities of different kinds share an offset, the one inserted last
// wins. BuildIndex inserts mentions, hashtags, links and then media, so a
// media entity beats a link, a link beats a hashtag and so on.
type SpanIndex struct {
	spans map[int]tweet.Entity
}

// BuildIndex indexes every entity in bag. A nil bag yields an empty index.
func BuildIndex(bag *tweet.EntityBag) *SpanIndex {
	idx := &SpanIndex{spans: make(map[int]tweet.Entity, bag.Len())}
	bag.Each(idx.insert)
	return idx
}

func (s *SpanIndex) insert(e tweet.Entity) {
	s.spans[e.Offset()] = e
}

// Lookup returns the entity starting exactly at offset.
func (s *SpanIndex) Lookup(offset int) (tweet.Entity, bool) {
	if s == nil {
		return nil, false
	}
	e, ok := s.spans[offset]
	return e, ok
}

// Len returns the number of distinct offsets in the index.
func (s *SpanIndex) Len() int {
	if s == nil {
		return 0
	}
	return len(s.spans)
}
