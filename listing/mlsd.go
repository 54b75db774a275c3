package listing

import (
	"strconv"
	"strings"
	"time"
)

// FactType is the RFC 3659 "type" fact, normalized to lower case.
type FactType string

const (
	FactFile   FactType = "file"
	FactDir    FactType = "dir"
	FactCurDir FactType = "cdir"
	FactParent FactType = "pdir"
)

// Fact is one decoded MLSD/MLST entry: a name plus its parsed facts, with
// the raw fact map kept alongside for anything the typed fields don't
// surface (server-specific facts vary widely).
type Fact struct {
	Name     string
	Type     string // raw "type" fact value, lower-cased; see FactFile etc.
	Size     int64
	Modify   time.Time
	Perm     string
	UnixMode string
	Raw      map[string]string
}

// ParseFact decodes a single MLSD/MLST line: "fact=value;fact=value; name".
func ParseFact(line string) (Fact, bool) {
	spaceIdx := strings.Index(line, " ")
	if spaceIdx == -1 {
		return Fact{}, false
	}
	factsStr := line[:spaceIdx]
	name := line[spaceIdx+1:]

	raw := make(map[string]string)
	for _, pair := range strings.Split(factsStr, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		raw[strings.ToLower(k)] = v
	}

	fact := Fact{Name: name, Raw: raw}
	if t, ok := raw["type"]; ok {
		fact.Type = strings.ToLower(t)
	}
	if s, ok := raw["size"]; ok {
		if size, err := strconv.ParseInt(s, 10, 64); err == nil {
			fact.Size = size
		}
	}
	if m, ok := raw["modify"]; ok {
		timestamp := strings.Split(m, ".")[0]
		if len(timestamp) == 14 {
			if t, err := time.Parse("20060102150405", timestamp); err == nil {
				fact.Modify = t.UTC()
			}
		}
	}
	if p, ok := raw["perm"]; ok {
		fact.Perm = p
	}
	if mode, ok := raw["unix.mode"]; ok {
		fact.UnixMode = mode
	}

	return fact, true
}

// ParseFacts decodes every line in lines, silently skipping malformed
// entries — a single unparsable line in a large MLSD response shouldn't
// sink the whole listing.
func ParseFacts(lines []string) []Fact {
	facts := make([]Fact, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if fact, ok := ParseFact(line); ok {
			facts = append(facts, fact)
		}
	}
	return facts
}
