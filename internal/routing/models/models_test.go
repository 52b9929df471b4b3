package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "crm/pkg/domain-errors"
)

func TestValidateKeyword(t *testing.T) {
	k, err := ValidateKeyword("  MATRÍCULA ")
	require.NoError(t, err)
	assert.Equal(t, "matrícula", k)

	_, err = ValidateKeyword("   ")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = ValidateKeyword(strings.Repeat("á", MaxKeywordLength+1))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestBetter(t *testing.T) {
	long := KeywordRule{ID: 9, Keyword: "matrícula online"}
	short := KeywordRule{ID: 1, Keyword: "matrícula"}
	assert.True(t, Better(long, short))
	assert.False(t, Better(short, long))

	a := KeywordRule{ID: 2, Keyword: "curso"}
	b := KeywordRule{ID: 5, Keyword: "prova"}
	assert.True(t, Better(a, b))
	assert.False(t, Better(b, a))
}
