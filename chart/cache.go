package chart

import (
	lru "github.com/hashicorp/golang-lru"
)

// DefaultCacheSize is the number of split answers a Splitter keeps.
const DefaultCacheSize = 128

// Split is an answer separated into its chart and its prose.
type Split struct {
	Chart *Description // nil when the answer has no valid chart
	Prose string
}

// HasChart reports whether the answer carried a valid chart.
func (s Split) HasChart() bool {
	return s.Chart != nil
}

// Splitter runs Extract and Strip once per distinct answer text and keeps
// the result in an LRU cache, so views can re-render without re-parsing.
type Splitter struct {
	cache *lru.Cache
}

// NewSplitter creates a splitter holding up to size answers.
func NewSplitter(size int) (*Splitter, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Splitter{cache: cache}, nil
}

// Split returns the chart and prose of text.
func (s *Splitter) Split(text string) Split {
	if v, ok := s.cache.Get(text); ok {
		return v.(Split)
	}
	out := SplitText(text)
	s.cache.Add(text, out)
	return out
}

// Len returns the number of cached answers.
func (s *Splitter) Len() int {
	return s.cache.Len()
}

// SplitText is the uncached form of Splitter.Split.
func SplitText(text string) Split {
	d, _ := Extract(text)
	return Split{Chart: d, Prose: Strip(text)}
}
