package listing

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name           string
		line           string
		expectedName   string
		expectedType   EntryType
		expectedSize   int64
		expectedTarget string
	}{
		{
			name:         "unix directory entry",
			line:         "drw-rw-rw-   1 root  root         0 Sep 24 2024 logger",
			expectedName: "logger",
			expectedType: TypeDir,
		},
		{
			name:         "unix file with size",
			line:         "-rw-rw-rw-   1 root  root   1037794 Dec 14 12:22 large-document.pdf",
			expectedName: "large-document.pdf",
			expectedType: TypeFile,
			expectedSize: 1037794,
		},
		{
			name:         "unix 8-field file with no group column",
			line:         "-rw-rw-rw-   1 root    616300 Oct 25 01:18 archive-data.zip",
			expectedName: "archive-data.zip",
			expectedType: TypeFile,
			expectedSize: 616300,
		},
		{
			name:           "unix symlink",
			line:           "lrwxrwxrwx   1 root  root        11 Dec 20 10:30 link -> target.txt",
			expectedName:   "link",
			expectedType:   TypeLink,
			expectedSize:   11,
			expectedTarget: "target.txt",
		},
		{
			name:           "unix symlink with spaces in target",
			line:           "lrwxrwxrwx   1 root  root        25 Dec 20 10:30 docs -> /home/user/My Documents",
			expectedName:   "docs",
			expectedType:   TypeLink,
			expectedSize:   25,
			expectedTarget: "/home/user/My Documents",
		},
		{
			name:         "unix numeric permissions",
			line:         "644   1 root  root    1234 Dec 15 04:51 data.bin",
			expectedName: "data.bin",
			expectedType: TypeFile,
			expectedSize: 1234,
		},
		{
			name:         "dos directory entry",
			line:         "09-24-24  10:30AM       <DIR>          logger",
			expectedName: "logger",
			expectedType: TypeDir,
		},
		{
			name:         "dos file with size",
			line:         "12-14-23  12:22PM           1037794 large-document.pdf",
			expectedName: "large-document.pdf",
			expectedType: TypeFile,
			expectedSize: 1037794,
		},
		{
			name:         "dos file with spaces in name",
			line:         "12-20-24  03:30PM            123456 my document.txt",
			expectedName: "my document.txt",
			expectedType: TypeFile,
			expectedSize: 123456,
		},
		{
			name:         "eplf file",
			line:         "+i8388621.48594,m825718503,r,s280,\tdjb.html",
			expectedName: "djb.html",
			expectedType: TypeFile,
			expectedSize: 280,
		},
		{
			name:         "eplf directory",
			line:         "+i8388621.48594,m825718503,/,\tpub",
			expectedName: "pub",
			expectedType: TypeDir,
		},
		{
			name:         "unrecognized format falls back to unknown",
			line:         "???totally not a listing line???",
			expectedName: "???totally not a listing line???",
			expectedType: TypeUnknown,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			entry := Parse(tt.line)
			if entry.Name != tt.expectedName {
				t.Errorf("Name = %q, want %q", entry.Name, tt.expectedName)
			}
			if entry.Type != tt.expectedType {
				t.Errorf("Type = %q, want %q", entry.Type, tt.expectedType)
			}
			if entry.Size != tt.expectedSize {
				t.Errorf("Size = %d, want %d", entry.Size, tt.expectedSize)
			}
			if entry.Target != tt.expectedTarget {
				t.Errorf("Target = %q, want %q", entry.Target, tt.expectedTarget)
			}
		})
	}
}

func TestParseBlankLine(t *testing.T) {
	t.Parallel()
	entry := Parse("   ")
	if entry != (Entry{}) {
		t.Errorf("Parse(blank) = %+v, want zero value", entry)
	}
}

func TestParseAllSkipsBlankLines(t *testing.T) {
	t.Parallel()
	lines := []string{
		"-rw-rw-rw-   1 root  root   1037794 Dec 14 12:22 a.pdf",
		"",
		"   ",
		"-rw-rw-rw-   1 root  root       100 Dec 14 12:22 b.pdf",
	}
	entries := ParseAll(lines)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Name != "a.pdf" || entries[1].Name != "b.pdf" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestIsDOSDate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want bool
	}{
		{"09-24-24", true},
		{"09-24-2024", true},
		{"09/24/24", true},
		{"drw-rw-rw-", false},
		{"09-24", false},
		{"09-ab-24", false},
	}
	for _, tt := range tests {
		if got := isDOSDate(tt.in); got != tt.want {
			t.Errorf("isDOSDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
