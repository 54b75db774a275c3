package listing

import "strings"

// dosParser decodes the DOS/Windows-style LIST line some servers (IIS,
// many embedded FTP daemons) emit: "MM-DD-YY  HH:MMAM  size filename" or
// "MM-DD-YY  HH:MMAM  <DIR>  dirname".
type dosParser struct{}

func (dosParser) Parse(line string) (Entry, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 || !isDOSDate(fields[0]) {
		return Entry{}, false
	}

	if fields[2] == "<DIR>" {
		return Entry{Type: TypeDir, Name: strings.Join(fields[3:], " ")}, true
	}

	size, ok := parseSize(fields[2])
	if !ok {
		return Entry{}, false
	}
	return Entry{Type: TypeFile, Size: size, Name: strings.Join(fields[3:], " ")}, true
}

// isDOSDate reports whether s looks like a DOS-format date: MM-DD-YY(YY) or
// MM/DD/YY(YY), with a 2- or 4-digit year.
func isDOSDate(s string) bool {
	var parts []string
	switch {
	case strings.Contains(s, "-"):
		parts = strings.Split(s, "-")
	case strings.Contains(s, "/"):
		parts = strings.Split(s, "/")
	default:
		return false
	}
	if len(parts) != 3 {
		return false
	}
	for i, part := range parts {
		if len(part) < 1 || len(part) > 4 {
			return false
		}
		if i == 2 && len(part) != 2 && len(part) != 4 {
			return false
		}
		if i < 2 && len(part) > 2 {
			return false
		}
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				return false
			}
		}
	}
	return true
}
