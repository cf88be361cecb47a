package pyruntime

import (
	"errors"
	"testing"

	"github.com/blang/semver"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    string
		wantErr bool
	}{
		{
			name:   "standard output",
			output: "Python 3.11.4\n",
			want:   "3.11.4",
		},
		{
			name:   "two part version",
			output: "Python 3.12\n",
			want:   "3.12.0",
		},
		{
			name:   "legacy stderr output",
			output: "Python 2.7.18",
			want:   "2.7.18",
		},
		{
			name:    "empty output",
			output:  "",
			wantErr: true,
		},
		{
			name:    "unexpected program name",
			output:  "pypy 7.3.1\n",
			wantErr: true,
		},
		{
			name:    "missing version field",
			output:  "Python\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.output)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseVersion() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCheckRange(t *testing.T) {
	tests := []struct {
		name         string
		version      string
		rangeExpr    string
		wantErr      bool
		incompatible bool
	}{
		{
			name:      "within range",
			version:   "3.11.4",
			rangeExpr: ">=3.9.0 <3.13.0",
		},
		{
			name:         "too old",
			version:      "3.8.10",
			rangeExpr:    ">=3.9.0 <3.13.0",
			wantErr:      true,
			incompatible: true,
		},
		{
			name:         "too new",
			version:      "3.13.0",
			rangeExpr:    ">=3.9.0 <3.13.0",
			wantErr:      true,
			incompatible: true,
		},
		{
			name:      "empty range accepts anything",
			version:   "2.7.18",
			rangeExpr: "",
		},
		{
			name:      "malformed range",
			version:   "3.11.4",
			rangeExpr: "not-a-range",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRange(semver.MustParse(tt.version), tt.rangeExpr)

			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected error but got none")
			}
			var verr *IncompatibleVersionError
			if got := errors.As(err, &verr); got != tt.incompatible {
				t.Errorf("errors.As(IncompatibleVersionError) = %v, want %v", got, tt.incompatible)
			}
		})
	}
}

func TestResolveExplicitMissing(t *testing.T) {
	if _, err := Resolve("definitely-not-a-real-interpreter-binary"); err == nil {
		t.Fatal("expected error for unresolvable explicit interpreter")
	}
}
