// Package blocklist holds the immutable set of blocked channel identifiers.
//
// Lookups go through a bloom filter first: a negative answer from the filter
// is definitive, a positive one is confirmed against the exact set. The set
// is built once and never mutated afterwards.
package blocklist

import (
	"github.com/bits-and-blooms/bloom/v3"

	"github.com/JonasBogvad/better-twitch-tv-extension/channel"
)

// falsePositiveRate sizes the bloom filter.
const falsePositiveRate = 0.01

// Blocklist is a read-only set of canonical identifiers. Safe for
// concurrent use.
type Blocklist struct {
	exact map[channel.ID]struct{}
	bf    *bloom.BloomFilter
}

// New builds a Blocklist from raw names. Names are trimmed and lowercased;
// entries that are not valid identifiers are dropped, duplicates collapse.
func New(names ...string) *Blocklist {
	exact := make(map[channel.ID]struct{}, len(names))
	for _, n := range names {
		id, ok := channel.Parse(n)
		if !ok {
			continue
		}
		exact[id] = struct{}{}
	}

	bf := bloom.NewWithEstimates(uint(max(len(exact), 1)), falsePositiveRate)
	for id := range exact {
		bf.AddString(string(id))
	}
	return &Blocklist{exact: exact, bf: bf}
}

// Contains reports whether id is blocked. id must be canonical, which is
// what channel.Extract and channel.Parse return.
func (b *Blocklist) Contains(id channel.ID) bool {
	if b == nil || id == "" {
		return false
	}
	if !b.bf.TestString(string(id)) {
		return false
	}
	_, ok := b.exact[id]
	return ok
}

// Len returns the number of distinct identifiers.
func (b *Blocklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.exact)
}

// Default returns the built-in list of channels flagged for promoting
// gambling on stream.
func Default() []string {
	return []string{
		"trainwreckstv",
		"roshtein",
		"nickslive",
		"itssliker",
		"classybeef",
		"xposed",
		"adinross",
	}
}
