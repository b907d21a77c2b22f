package store_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/joestump/promptpad/internal/store"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "Greeting", want: "Greeting"},
		{in: "  padded  ", want: "padded"},
		{in: strings.Repeat("é", 100), want: strings.Repeat("é", 100)},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: strings.Repeat("a", 101), wantErr: true},
	}
	for _, tt := range tests {
		got, err := store.NormalizeName(tt.in)
		if tt.wantErr {
			if !errors.Is(err, store.ErrNameInvalid) {
				t.Errorf("NormalizeName(%q) err = %v, want ErrNameInvalid", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeName(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
