package roomid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixpot/mixpot/internal/randutil"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := Generate()
		require.Len(t, id, Length)
		require.NoError(t, Validate(id))
	}
}

func TestGenerateDeterministicWithSource(t *testing.T) {
	a := NewGenerator(randutil.New(7)).Generate()
	b := NewGenerator(randutil.New(7)).Generate()
	assert.Equal(t, a, b)

	c := NewGenerator(randutil.New(8)).Generate()
	assert.NotEqual(t, a, c)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate("ABC234"))
	require.NoError(t, Validate("abc234"), "lowercase accepted")

	assert.Error(t, Validate(""))
	assert.Error(t, Validate("ABC23"))
	assert.Error(t, Validate("ABC2345"))
	assert.Error(t, Validate("ABC10!"), "0, 1 and punctuation excluded")
	assert.Error(t, Validate("ABCO23"), "letter O excluded")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABC234", Normalize("abc234"))
}
