package dom

// History is the programmatic navigation surface of a host: the two entry
// points a single-page app uses to change location without a reload.
type History interface {
	PushState(url string)
	ReplaceState(url string)
}

// NavKind says which history entry point fired.
type NavKind int

const (
	NavPush NavKind = iota
	NavReplace
)

// InterceptHistory decorates h so that every call first delegates to the
// original entry point and then reports the call through notify. The
// notification always observes the post-navigation location.
func InterceptHistory(h History, notify func(NavKind)) History {
	return &interceptedHistory{next: h, notify: notify}
}

type interceptedHistory struct {
	next   History
	notify func(NavKind)
}

func (i *interceptedHistory) PushState(url string) {
	i.next.PushState(url)
	i.notify(NavPush)
}

func (i *interceptedHistory) ReplaceState(url string) {
	i.next.ReplaceState(url)
	i.notify(NavReplace)
}
