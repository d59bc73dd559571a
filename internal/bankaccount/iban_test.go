package bankaccount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		iban string
		want bool
	}{
		{"finland", "FI21 1234 5600 0007 85", true},
		{"finland compact", "FI2112345600000785", true},
		{"germany", "DE89 3704 0044 0532 0130 00", true},
		{"norway", "NO93 8601 1117 947", true},
		{"sweden", "SE45 5000 0000 0583 9825 7466", true},
		{"italy", "IT60 X054 2811 1010 0000 0123 456", true},
		{"great britain", "GB82 WEST 1234 5698 7654 32", true},
		{"bad check digits", "FI21 1234 5600 0007 86", false},
		{"wrong length", "FI21 1234 5600 0007", false},
		{"unknown country", "ZZ21 1234 5600 0007 85", false},
		{"not a number", "hello world", false},
		{"empty", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Valid(tc.iban))
		})
	}
}

func TestRegenerateFinland(t *testing.T) {
	got := Regenerate("FI10 4725 0961 0005 73")

	require.Len(t, got, 18)
	assert.Equal(t, "FI", got[:2])
	assert.Equal(t, "472509", got[4:10], "bank identifier must be preserved")
	assert.True(t, Valid(got), "regenerated IBAN must pass the mod-97 check")
	assert.True(t, luhnValid(got[4:]), "Finnish account numbers carry a Luhn check digit")
}

func TestRegenerateNorway(t *testing.T) {
	got := Regenerate("NO93 8601 1117 947")

	require.Len(t, got, 15)
	assert.Equal(t, "NO", got[:2])
	assert.Equal(t, "8601", got[4:8], "bank identifier must be preserved")
	assert.True(t, Valid(got))
	assert.True(t, mod11Valid(got[4:]), "Norwegian account numbers carry a MOD11 check digit")
}

func TestRegenerateItaly(t *testing.T) {
	got := Regenerate("IT60 X054 2811 1010 0000 0123 456")

	require.Len(t, got, 27)
	assert.Equal(t, "IT", got[:2])
	assert.Equal(t, "0542811101", got[5:15], "bank and branch codes must be preserved")
	assert.True(t, Valid(got))

	bban := got[4:]
	cin, err := cinChar(bban[1:])
	require.NoError(t, err)
	assert.Equal(t, cin, bban[0], "CIN control letter must match the regenerated account")
}

func TestRegenerateSwedenSEB(t *testing.T) {
	got := Regenerate("SE45 5000 0000 0583 9825 7466")

	require.Len(t, got, 24)
	assert.Equal(t, "SE", got[:2])
	assert.Equal(t, "5000000005839", got[4:17], "SEB bank prefix must be preserved")
	assert.True(t, Valid(got))
}

func TestRegenerateGeneric(t *testing.T) {
	got := Regenerate("DE89 3704 0044 0532 0130 00")

	require.Len(t, got, 22)
	assert.Equal(t, "DE", got[:2])
	assert.Equal(t, "37040044", got[4:12], "bank identifier must be preserved")
	assert.True(t, Valid(got))
}

func TestRegeneratePassThrough(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", "not an iban"},
		{"bad check digits", "FI10 4725 0961 0005 74"},
		{"unsupported country", "ZZ10 4725 0961 0005 73"},
		{"empty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Regenerate(tc.in)
			assert.Equal(t, tc.in, got, "invalid input must pass through unmodified")
			assert.Equal(t, got, Regenerate(got), "pass-through must be idempotent")
		})
	}
}

func TestRandom(t *testing.T) {
	t.Run("finland", func(t *testing.T) {
		got, err := Random("FI")
		require.NoError(t, err)
		assert.True(t, Valid(got))
		assert.True(t, luhnValid(got[4:]))
	})

	t.Run("norway", func(t *testing.T) {
		got, err := Random("no")
		require.NoError(t, err)
		assert.True(t, Valid(got))
		assert.True(t, mod11Valid(got[4:]))
	})

	t.Run("unsupported country", func(t *testing.T) {
		_, err := Random("ZZ")
		assert.Error(t, err)
	})

	t.Run("malformed country code", func(t *testing.T) {
		_, err := Random("F")
		assert.Error(t, err)
	})
}

func TestRegenerateBBAN(t *testing.T) {
	t.Run("finland", func(t *testing.T) {
		got := RegenerateBBAN("FI", "12345600000785")
		require.Len(t, got, 14)
		assert.Equal(t, "123456", got[:6], "bank identifier must be preserved")
		assert.True(t, luhnValid(got))
	})

	t.Run("swedish danske national format", func(t *testing.T) {
		got := RegenerateBBAN("SE", "123412345678901")
		require.Len(t, got, 15)
		assert.Equal(t, "1234", got[:4], "bank prefix must be preserved")
	})

	t.Run("swedish unrecognized format", func(t *testing.T) {
		got := RegenerateBBAN("SE", "99")
		assert.Equal(t, "99", got)
	})

	t.Run("unsupported country", func(t *testing.T) {
		got := RegenerateBBAN("XX", "12345600000785")
		assert.Equal(t, "12345600000785", got)
	})

	t.Run("wrong length", func(t *testing.T) {
		got := RegenerateBBAN("FI", "1234")
		assert.Equal(t, "1234", got)
	})
}
