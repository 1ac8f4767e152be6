package engine

import "github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"

// linkRecord remembers which links were already evaluated. Keys are
// non-owning; retain drops keys of links no longer in the document so the
// record tracks the live document rather than every link ever seen.
type linkRecord struct {
	seen map[dom.Key]struct{}
}

func newLinkRecord() *linkRecord {
	return &linkRecord{seen: make(map[dom.Key]struct{})}
}

// mark records key and reports whether it was new.
func (r *linkRecord) mark(key dom.Key) bool {
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = struct{}{}
	return true
}

// retain keeps only the given keys.
func (r *linkRecord) retain(present []dom.Key) {
	if len(r.seen) == len(present) {
		return
	}
	keep := make(map[dom.Key]struct{}, len(present))
	for _, k := range present {
		if _, ok := r.seen[k]; ok {
			keep[k] = struct{}{}
		}
	}
	r.seen = keep
}

func (r *linkRecord) len() int { return len(r.seen) }

func (r *linkRecord) reset() { r.seen = make(map[dom.Key]struct{}) }
