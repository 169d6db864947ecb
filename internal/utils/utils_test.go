package utils_test

import (
	"testing"

	"github.com/jrsteele09/klarbill-gateway/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestDigits(t *testing.T) {
	require.Equal(t, "0074462025", utils.Digits("SWLS0074462025"))
	require.Equal(t, "", utils.Digits("INV"))
	require.Equal(t, "10", utils.NumericValue("INV10").String())
	require.Equal(t, "0", utils.NumericValue("none").String())
	require.Equal(t, "123456789012345678901234", utils.NumericValue("X123456789012345678901234").String())
}

func TestPointers(t *testing.T) {
	require.Nil(t, utils.NonZeroPtr(""))
	require.Nil(t, utils.NonZeroPtr(0))
	require.Equal(t, "a", *utils.NonZeroPtr("a"))
}
