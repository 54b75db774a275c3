// Package listing decodes the raw line-oriented output of LIST, NLST and
// MLSD into structured entries. It is pure: nothing here opens a socket or
// reads a reply code, so it can be fed directly with the []string slices
// Client.List, Client.NameList and Client.Mlsd return, or with captured
// fixtures in a test.
package listing

import (
	"strconv"
	"strings"
)

// EntryType classifies a decoded listing entry. The LIST formats below
// don't always distinguish every case a server could report (sockets,
// devices, etc. are folded into "file"), so this stays deliberately small.
type EntryType string

const (
	TypeFile    EntryType = "file"
	TypeDir     EntryType = "dir"
	TypeLink    EntryType = "link"
	TypeUnknown EntryType = "unknown"
)

// Entry is one decoded LIST/NLST line.
type Entry struct {
	Name   string
	Type   EntryType
	Size   int64
	Target string // symlink target, set only when Type == TypeLink
	Raw    string
}

// Parser decodes a single trimmed LIST line, reporting whether it matched
// its format.
type Parser interface {
	Parse(line string) (Entry, bool)
}

// defaultParsers is the order Parse tries formats in: EPLF and DOS are
// both unambiguous from their first field, so they're cheap to rule out
// before falling back to the more permissive Unix field-counting parser.
var defaultParsers = []Parser{
	eplfParser{},
	dosParser{},
	unixParser{},
}

// Parse decodes a single LIST/NLST line using every known format in turn.
// A line that matches none of them still yields an entry, with Type
// TypeUnknown and Name set to the raw line, so callers never have to special
// case a parse failure into dropping data silently.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Entry{}
	}
	for _, p := range defaultParsers {
		if entry, ok := p.Parse(trimmed); ok {
			entry.Raw = line
			return entry
		}
	}
	return Entry{Raw: line, Name: line, Type: TypeUnknown}
}

// ParseAll decodes every non-blank line in lines, in order.
func ParseAll(lines []string) []Entry {
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries
}

func parseSize(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}
