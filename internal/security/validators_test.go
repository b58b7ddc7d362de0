package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDisplayName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name passes", "Steve", "Steve"},
		{"whitespace trimmed", "  Alex  ", "Alex"},
		{"angle brackets stripped", "<script>bob</script>", "scriptbob/script"},
		{"capped at 24 chars", strings.Repeat("a", 40), strings.Repeat("a", 24)},
		{"cap counts characters not bytes", strings.Repeat("é", 30), strings.Repeat("é", 24)},
		{"empty stays empty", "", ""},
		{"only brackets collapses to empty", "<>", ""},
		{"unicode preserved", "Søren", "Søren"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeDisplayName(tt.input))
		})
	}
}
