package listing

import "strings"

// eplfParser decodes the Easily Parsed List Format djbdns/qmail-era
// servers use: "+facts\tname", where facts is a comma-separated list like
// "i8388621.48594,m825718503,r,s280,".
type eplfParser struct{}

func (eplfParser) Parse(line string) (Entry, bool) {
	if !strings.HasPrefix(line, "+") {
		return Entry{}, false
	}
	rest := line[1:]

	idx := strings.IndexAny(rest, "\t ")
	if idx == -1 {
		return Entry{}, false
	}
	facts := rest[:idx]
	name := strings.TrimSpace(rest[idx+1:])
	if name == "" {
		return Entry{}, false
	}

	entry := Entry{Name: name, Type: TypeFile}
	for _, fact := range strings.Split(facts, ",") {
		if fact == "" {
			continue
		}
		switch fact[0] {
		case '/':
			entry.Type = TypeDir
		case 's':
			if size, ok := parseSize(fact[1:]); ok {
				entry.Size = size
			}
		}
	}
	return entry, true
}
