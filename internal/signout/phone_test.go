package signout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPhoneBinder_FormatEquivalence(t *testing.T) {
	b := NewPhoneBinder(testSecret, "NZ")

	// The same number, typed three ways, must bind identically.
	national := b.HashPhone("021 123 4567")
	compact := b.HashPhone("0211234567")
	intl := b.HashPhone("+64211234567")

	require.Equal(t, intl, national)
	require.Equal(t, intl, compact)
}

func TestPhoneBinder_HashShape(t *testing.T) {
	b := NewPhoneBinder(testSecret, "NZ")
	h := b.HashPhone("+64211234567")
	require.Regexp(t, "^[0-9a-f]{16}$", h)
}

func TestPhoneBinder_DistinctNumbers(t *testing.T) {
	b := NewPhoneBinder(testSecret, "NZ")
	require.NotEqual(t, b.HashPhone("+64211234567"), b.HashPhone("+64211234568"))
}

func TestPhoneBinder_SecretDependent(t *testing.T) {
	a := NewPhoneBinder(testSecret, "NZ")
	b := NewPhoneBinder([]byte("other"), "NZ")
	require.NotEqual(t, a.HashPhone("+64211234567"), b.HashPhone("+64211234567"))
}

func TestPhoneBinder_UnparseableFallsBackToDigits(t *testing.T) {
	b := NewPhoneBinder(testSecret, "NZ")
	// Too short to be a real NZ number; both renderings reduce to the same
	// digit string and still bind identically.
	require.Equal(t, b.HashPhone("12-34"), b.HashPhone("1234"))
}
