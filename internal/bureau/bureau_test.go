package bureau_test

import (
	"testing"

	"github.com/smallbiznis/credicheck/internal/bureau"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	b, err := bureau.Parse(" cibil ")
	require.NoError(t, err)
	assert.Equal(t, bureau.CIBIL, b)

	_, err = bureau.Parse("TRANSUNION")
	assert.ErrorIs(t, err, bureau.ErrUnknownBureau)
}

func TestParseSet(t *testing.T) {
	set, err := bureau.ParseSet([]string{"CIBIL", "experian"})
	require.NoError(t, err)
	assert.Equal(t, []bureau.Bureau{bureau.CIBIL, bureau.Experian}, set)

	set, err = bureau.ParseSet([]string{"CIBIL", "CIBIL"})
	require.NoError(t, err)
	assert.Equal(t, []bureau.Bureau{bureau.CIBIL}, set)

	_, err = bureau.ParseSet(nil)
	assert.ErrorIs(t, err, bureau.ErrUnknownBureau)
}

func TestAllIsClosedSet(t *testing.T) {
	all := bureau.All()
	require.Len(t, all, 4)
	for _, b := range all {
		parsed, err := bureau.Parse(string(b))
		require.NoError(t, err)
		assert.Equal(t, b, parsed)
	}
}
