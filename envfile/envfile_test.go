package envfile

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]string
		wantErr bool
		errLine int
	}{
		{
			name:  "simple assignment",
			input: "BOT_TOKEN=abc123\n",
			want:  map[string]string{"BOT_TOKEN": "abc123"},
		},
		{
			name:  "comments and blank lines ignored",
			input: "# credentials\n\nBOT_TOKEN=abc123\n   # trailing comment line\n",
			want:  map[string]string{"BOT_TOKEN": "abc123"},
		},
		{
			name:  "export prefix stripped",
			input: "export BOT_TOKEN=abc123\n",
			want:  map[string]string{"BOT_TOKEN": "abc123"},
		},
		{
			name:  "duplicate key last wins",
			input: "A=1\nA=2\n",
			want:  map[string]string{"A": "2"},
		},
		{
			name:  "double quotes stripped",
			input: `GREETING="hello world"` + "\n",
			want:  map[string]string{"GREETING": "hello world"},
		},
		{
			name:  "single quotes stripped",
			input: "GREETING='hello world'\n",
			want:  map[string]string{"GREETING": "hello world"},
		},
		{
			name:  "mismatched quotes kept",
			input: `VALUE="unbalanced'` + "\n",
			want:  map[string]string{"VALUE": `"unbalanced'`},
		},
		{
			name:  "hash in unquoted value starts a comment",
			input: "PASSWORD=p#ss\n",
			want:  map[string]string{"PASSWORD": "p"},
		},
		{
			name:  "hash in single-quoted value kept",
			input: "PASSWORD='p#ss'\n",
			want:  map[string]string{"PASSWORD": "p#ss"},
		},
		{
			name:  "inline comment after value",
			input: "HOST=localhost # web ui\n",
			want:  map[string]string{"HOST": "localhost"},
		},
		{
			name:  "empty value allowed",
			input: "EMPTY=\n",
			want:  map[string]string{"EMPTY": ""},
		},
		{
			name:  "value containing equals",
			input: "URL=http://host:8080/?a=1\n",
			want:  map[string]string{"URL": "http://host:8080/?a=1"},
		},
		{
			name:    "missing equals rejected",
			input:   "A=1\nJUSTAWORD\n",
			wantErr: true,
			errLine: 2,
		},
		{
			name:    "invalid key rejected",
			input:   "1BAD=value\n",
			wantErr: true,
			errLine: 1,
		},
		{
			name:    "dotted key rejected",
			input:   "section.key=value\n",
			wantErr: true,
			errLine: 1,
		},
		{
			name:    "key with spaces rejected",
			input:   "SOME KEY=value\n",
			wantErr: true,
			errLine: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overlay, err := Parse(strings.NewReader(tt.input))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				var perr *ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("expected *ParseError, got %T: %v", err, err)
				}
				if perr.Line != tt.errLine {
					t.Errorf("ParseError.Line = %d, want %d", perr.Line, tt.errLine)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if overlay.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", overlay.Len(), len(tt.want))
			}
			for key, want := range tt.want {
				got, ok := overlay.Get(key)
				if !ok {
					t.Errorf("key %q missing", key)
					continue
				}
				if got != want {
					t.Errorf("Get(%q) = %q, want %q", key, got, want)
				}
			}
		})
	}
}

func TestParseKeyOrder(t *testing.T) {
	overlay, err := Parse(strings.NewReader("B=1\nA=2\nB=3\nC=4\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := overlay.Keys()
	want := []string{"B", "A", "C"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if v, _ := overlay.Get("B"); v != "3" {
		t.Errorf("Get(B) = %q, want 3", v)
	}
}

func TestMerge(t *testing.T) {
	overlay, err := Parse(strings.NewReader("BOT_TOKEN=from_file\nNEW_VAR=added\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := []string{"PATH=/usr/bin", "BOT_TOKEN=from_process"}
	merged := Merge(base, overlay)

	got := make(map[string]string, len(merged))
	for _, kv := range merged {
		key, value, _ := strings.Cut(kv, "=")
		got[key] = value
	}

	if got["BOT_TOKEN"] != "from_process" {
		t.Errorf("BOT_TOKEN = %q, process environment should win over overlay", got["BOT_TOKEN"])
	}
	if got["NEW_VAR"] != "added" {
		t.Errorf("NEW_VAR = %q, want added", got["NEW_VAR"])
	}
	if got["PATH"] != "/usr/bin" {
		t.Errorf("PATH = %q, want /usr/bin", got["PATH"])
	}
}

func TestMergeNilOverlay(t *testing.T) {
	base := []string{"PATH=/usr/bin"}
	merged := Merge(base, nil)
	if len(merged) != 1 || merged[0] != "PATH=/usr/bin" {
		t.Errorf("Merge(base, nil) = %v, want base unchanged", merged)
	}
}
