package blocklist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/JonasBogvad/better-twitch-tv-extension/channel"
)

// Parse reads a newline-delimited list of channel names.
//
//   - '#' starts a comment, whole-line or inline
//   - surrounding whitespace and a leading BOM are ignored
//   - invalid names are skipped, not reported
//   - duplicates are removed, first-seen order is kept
func Parse(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	seen := make(map[channel.ID]struct{})
	var out []string
	for sc.Scan() {
		line := strings.TrimPrefix(sc.Text(), "\uFEFF")
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		id, ok := channel.Parse(line)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, string(id))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("blocklist: parse: %w", err)
	}
	return out, nil
}

// LoadFile parses the list at path.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("blocklist: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}
