package listing

import (
	"testing"
	"time"
)

func TestParseFact(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		line         string
		wantOK       bool
		wantName     string
		wantType     string
		wantSize     int64
		wantModify   time.Time
		wantPerm     string
		wantUnixMode string
	}{
		{
			name:       "file with size and modify",
			line:       "type=file;size=1037794;modify=20231214122200; large-document.pdf",
			wantOK:     true,
			wantName:   "large-document.pdf",
			wantType:   "file",
			wantSize:   1037794,
			wantModify: time.Date(2023, 12, 14, 12, 22, 0, 0, time.UTC),
		},
		{
			name:     "directory entry",
			line:     "type=dir;perm=el; pub",
			wantOK:   true,
			wantName: "pub",
			wantType: "dir",
			wantPerm: "el",
		},
		{
			name:         "unix mode fact carried through",
			line:         "type=file;size=16;unix.mode=0644; verify_job",
			wantOK:       true,
			wantName:     "verify_job",
			wantType:     "file",
			wantSize:     16,
			wantUnixMode: "0644",
		},
		{
			name:   "modify with fractional seconds truncated",
			line:   "type=file;modify=20231214122200.123; f.txt",
			wantOK: true,
			wantName: "f.txt",
			wantType: "file",
			wantModify: time.Date(2023, 12, 14, 12, 22, 0, 0, time.UTC),
		},
		{
			name:   "no space separator is malformed",
			line:   "type=file;size=10",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fact, ok := ParseFact(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if fact.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", fact.Name, tt.wantName)
			}
			if fact.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", fact.Type, tt.wantType)
			}
			if fact.Size != tt.wantSize {
				t.Errorf("Size = %d, want %d", fact.Size, tt.wantSize)
			}
			if tt.wantPerm != "" && fact.Perm != tt.wantPerm {
				t.Errorf("Perm = %q, want %q", fact.Perm, tt.wantPerm)
			}
			if tt.wantUnixMode != "" && fact.UnixMode != tt.wantUnixMode {
				t.Errorf("UnixMode = %q, want %q", fact.UnixMode, tt.wantUnixMode)
			}
			if !tt.wantModify.IsZero() && !fact.Modify.Equal(tt.wantModify) {
				t.Errorf("Modify = %v, want %v", fact.Modify, tt.wantModify)
			}
		})
	}
}

func TestParseFactsSkipsMalformedLines(t *testing.T) {
	t.Parallel()
	lines := []string{
		"type=file;size=10; a.txt",
		"type=file;size=10",
		"garbage with no facts separator would still have a space so this parses as name-only",
		"",
		"type=dir; b",
	}
	facts := ParseFacts(lines)
	if len(facts) != 3 {
		t.Fatalf("got %d facts, want 3", len(facts))
	}
}
