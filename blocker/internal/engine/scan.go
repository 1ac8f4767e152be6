package engine

import (
	"fmt"
	"log/slog"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
	"github.com/JonasBogvad/better-twitch-tv-extension/channel"
)

// ScanResult summarises one scan pass.
type ScanResult struct {
	Links      int // a[href] elements in the document
	Evaluated  int // links seen for the first time
	Matched    int // evaluated links pointing at a blocked channel
	Suppressed int // containers newly hidden
}

// scanner walks every link and hides the containers of blocked ones. The
// link record makes repeated scans cost one map lookup per known link.
type scanner struct {
	doc    dom.Document
	bl     Matcher
	loc    *locator
	record *linkRecord
	logger *slog.Logger
}

func (s *scanner) scan() (ScanResult, error) {
	var res ScanResult

	links, err := s.doc.Links()
	if err != nil {
		return res, fmt.Errorf("engine: list links: %w", err)
	}
	res.Links = len(links)

	present := make([]dom.Key, 0, len(links))
	for _, link := range links {
		key := link.Key()
		present = append(present, key)
		if !s.record.mark(key) {
			continue
		}
		res.Evaluated++

		href, _ := link.Attr("href")
		id, ok := channel.Extract(href)
		if !ok || !s.bl.Contains(id) {
			continue
		}
		res.Matched++

		target := s.loc.locate(link)
		hidden, err := hide(target)
		if err != nil {
			s.logger.Warn("engine: suppress failed", "channel", id, "error", err)
			continue
		}
		if hidden {
			res.Suppressed++
			s.logger.Debug("engine: suppressed", "channel", id, "target", target.TagName())
		}
	}
	s.record.retain(present)
	return res, nil
}
