package listing

import "strings"

// unixParser decodes the Unix-style LIST line `ls -l` emits, in both its
// 9-field (perms links owner group size month day time/year name) and
// 8-field (no group column) variants, plus numeric permission bits some
// servers report instead of the symbolic rwx form.
type unixParser struct{}

func (unixParser) Parse(line string) (Entry, bool) {
	fields := strings.Fields(line)
	if len(fields) < 8 {
		return Entry{}, false
	}

	perms := fields[0]
	isSymbolic := len(perms) >= 1 && strings.ContainsRune("-dlbcps", rune(perms[0]))
	isNumeric := len(perms) >= 3 && len(perms) <= 4
	for _, ch := range perms {
		if ch < '0' || ch > '7' {
			isNumeric = false
			break
		}
	}
	if !isSymbolic && !isNumeric {
		return Entry{}, false
	}

	entry := Entry{Type: TypeFile}
	if isSymbolic {
		switch perms[0] {
		case 'd':
			entry.Type = TypeDir
		case 'l':
			entry.Type = TypeLink
		}
	}

	var sizeIdx, nameStartIdx int
	switch {
	case len(fields) >= 9:
		if _, ok := parseSize(fields[4]); ok {
			sizeIdx, nameStartIdx = 4, 8
		} else if _, ok := parseSize(fields[3]); ok {
			sizeIdx, nameStartIdx = 3, 7
		} else {
			return Entry{}, false
		}
	default: // exactly 8 fields
		if _, ok := parseSize(fields[3]); ok {
			sizeIdx, nameStartIdx = 3, 7
		} else {
			return Entry{}, false
		}
	}

	size, ok := parseSize(fields[sizeIdx])
	if !ok {
		return Entry{}, false
	}
	entry.Size = size

	fullName := strings.Join(fields[nameStartIdx:], " ")
	if entry.Type == TypeLink {
		if before, after, ok := strings.Cut(fullName, " -> "); ok {
			entry.Name, entry.Target = before, after
		} else {
			entry.Name = fullName
		}
	} else {
		entry.Name = fullName
	}

	return entry, true
}
