package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "only blanks", input: "  ", expected: nil},
		{name: "single entry", input: "kafka:9092", expected: []string{"kafka:9092"}},
		{name: "trims and drops blanks", input: " a:1 , ,b:2,", expected: []string{"a:1", "b:2"}},
		{name: "drops repeats keeping first", input: "a,b,a", expected: []string{"a", "b"}},
		{name: "preserves case", input: "Admin,admin", expected: []string{"Admin", "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}

func TestFoldSet(t *testing.T) {
	set := FoldSet([]string{" Administrador ", "ADMIN", "admin", ""})

	assert.Len(t, set, 2)
	assert.Contains(t, set, "administrador")
	assert.Contains(t, set, "admin")
	assert.Empty(t, FoldSet(nil))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "suporte", Fold("  SuPorte "))
}
