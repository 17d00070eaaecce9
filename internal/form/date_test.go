package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRoundTripFromAPI(t *testing.T) {
	for _, d := range []string{"01/06/2024", "29/02/2024", "31/12/1999", "15/08/1947"} {
		input, err := ToInputDate(d)
		require.NoError(t, err)
		back, err := ToAPIDate(input)
		require.NoError(t, err)
		assert.Equal(t, d, back)
	}
}

func TestDateRoundTripFromInput(t *testing.T) {
	for _, d := range []string{"2024-06-01", "2024-02-29", "2000-01-31"} {
		api, err := ToAPIDate(d)
		require.NoError(t, err)
		back, err := ToInputDate(api)
		require.NoError(t, err)
		assert.Equal(t, d, back)
	}
}

func TestDateConversionFormats(t *testing.T) {
	api, err := ToAPIDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "01/06/2024", api)

	empty, err := ToAPIDate("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ToAPIDate("01/06/2024")
	assert.Error(t, err)
	_, err = ToInputDate("2023-02-29")
	assert.Error(t, err)
	assert.False(t, IsAPIDate("30/02/2024"))
	assert.True(t, IsAPIDate("28/02/2024"))
}
