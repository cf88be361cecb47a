package envfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/subosito/gotenv"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Overlay is an ordered set of environment variable assignments read from
// an overlay file. Duplicate keys collapse to the last occurrence while
// keeping the position of the first.
type Overlay struct {
	keys   []string
	values map[string]string
}

// Load reads and parses the overlay file at path.
func Load(path string) (*Overlay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open overlay file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads KEY=VALUE assignments from r according to the package
// grammar. Lines are fed to the dotenv parser one at a time so a malformed
// line can be reported with its line number instead of failing the file as
// a whole.
func Parse(r io.Reader) (*Overlay, error) {
	overlay := &Overlay{values: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parsed, err := gotenv.StrictParse(strings.NewReader(line))
		if err != nil {
			return nil, &ParseError{Line: lineno, Text: raw, Reason: err.Error()}
		}
		if len(parsed) == 0 {
			return nil, &ParseError{Line: lineno, Text: raw, Reason: "not a KEY=VALUE assignment"}
		}

		for key, value := range parsed {
			// gotenv accepts keys like "1BAD" or "a.b"; the overlay
			// grammar is stricter so a typo never exports a variable the
			// bot can not read back.
			if !keyPattern.MatchString(key) {
				return nil, &ParseError{Line: lineno, Text: raw, Reason: fmt.Sprintf("invalid key %q", key)}
			}
			overlay.set(key, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read overlay file: %w", err)
	}

	return overlay, nil
}

// set records an assignment, last occurrence winning.
func (o *Overlay) set(key, value string) {
	if _, seen := o.values[key]; !seen {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value for key and whether the overlay defines it.
func (o *Overlay) Get(key string) (string, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the defined keys in file order.
func (o *Overlay) Keys() []string {
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

// Len returns the number of distinct keys in the overlay.
func (o *Overlay) Len() int {
	return len(o.keys)
}

// Merge returns base extended with overlay entries whose keys base does not
// already define. base uses the os.Environ "KEY=VALUE" form. A nil overlay
// returns base unchanged.
func Merge(base []string, overlay *Overlay) []string {
	if overlay == nil || overlay.Len() == 0 {
		return base
	}

	defined := make(map[string]bool, len(base))
	for _, kv := range base {
		if key, _, ok := strings.Cut(kv, "="); ok {
			defined[key] = true
		}
	}

	merged := make([]string, len(base), len(base)+overlay.Len())
	copy(merged, base)
	for _, key := range overlay.keys {
		if !defined[key] {
			merged = append(merged, key+"="+overlay.values[key])
		}
	}

	return merged
}
