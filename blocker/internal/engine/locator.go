package engine

import (
	"strings"

	"github.com/JonasBogvad/better-twitch-tv-extension/blocker/internal/dom"
)

// locator picks the container to hide for a matched link: the nearest
// card-like ancestor, or a short fixed climb for compact rows built from
// generic containers. It never returns a landmark or anything above one.
type locator struct {
	maxSteps       int
	fallbackLevels int
	cards          map[string]bool
	landmarks      map[string]bool
}

func newLocator(cfg LocatorConfig) *locator {
	cfg.defaults()
	return &locator{
		maxSteps:       cfg.MaxSteps,
		fallbackLevels: cfg.FallbackLevels,
		cards:          tagSet(cfg.CardTags),
		landmarks:      tagSet(cfg.LandmarkTags),
	}
}

func tagSet(tags []string) map[string]bool {
	m := make(map[string]bool, len(tags))
	for _, t := range tags {
		m[strings.ToLower(t)] = true
	}
	return m
}

func (l *locator) locate(link dom.Element) dom.Element {
	el := link
	for steps := 0; el != nil && steps < l.maxSteps; steps++ {
		tag := el.TagName()
		if l.cards[tag] {
			return el
		}
		if l.landmarks[tag] {
			break
		}
		el = el.Parent()
	}
	return l.fallback(link)
}

// fallback climbs up to fallbackLevels parents, stopping below the first
// landmark. A link directly under a landmark is returned itself: landmarks
// are never hidden, even at the cost of hiding only the link.
func (l *locator) fallback(link dom.Element) dom.Element {
	target := link
	for i := 0; i < l.fallbackLevels; i++ {
		p := target.Parent()
		if p == nil || l.landmarks[p.TagName()] {
			break
		}
		target = p
	}
	return target
}
