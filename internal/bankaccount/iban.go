// Package bankaccount regenerates bank account numbers while keeping them
// syntactically valid.
//
// Regeneration preserves the country and bank identifier of the input and
// randomizes only the account-holder part, recomputing any embedded national
// check digits (Finnish Luhn, Norwegian MOD11, Italian CIN, the Swedish bank
// formats) and the ISO 7064 MOD 97-10 check digits of the IBAN itself.
//
// The package never repairs invalid input: anything that fails to parse or
// validate is returned unmodified, so a falsely-valid number is never
// fabricated.
package bankaccount

import (
	"fmt"
	"log/slog"
	"strings"
)

type iban struct {
	Country string
	Check   string
	BBAN    string
}

// compact strips spaces and uppercases, accepting the common paper formats.
func compact(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}

// mod97 computes the ISO 7064 remainder of the digit expansion of s, with
// letters A-Z mapped to 10-35.
func mod97(s string) (int, error) {
	rem := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			rem = (rem*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			rem = (rem*100 + int(c-'A') + 10) % 97
		default:
			return 0, fmt.Errorf("character %q not allowed in an IBAN", c)
		}
	}
	return rem, nil
}

// computeCheckDigits returns the two check digits that make
// country+digits+bban a valid IBAN.
func computeCheckDigits(country, bban string) (string, error) {
	rem, err := mod97(bban + country + "00")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d", 98-rem), nil
}

func parseIBAN(s string) (iban, error) {
	c := compact(s)
	if len(c) < 5 {
		return iban{}, fmt.Errorf("too short to be an IBAN: %q", s)
	}
	ib := iban{Country: c[:2], Check: c[2:4], BBAN: c[4:]}
	if !alphaUpper.valid(ib.Country) {
		return iban{}, fmt.Errorf("invalid country code %q", ib.Country)
	}
	if !numeric.valid(ib.Check) {
		return iban{}, fmt.Errorf("invalid check digits %q", ib.Check)
	}
	f, ok := formats[ib.Country]
	if !ok {
		return iban{}, fmt.Errorf("unsupported country %q", ib.Country)
	}
	if !f.spec.validate(ib.BBAN) {
		return iban{}, fmt.Errorf("BBAN %q does not match the %s layout", ib.BBAN, ib.Country)
	}
	rem, err := mod97(ib.BBAN + ib.Country + ib.Check)
	if err != nil {
		return iban{}, err
	}
	if rem != 1 {
		return iban{}, fmt.Errorf("check digits do not match")
	}
	return ib, nil
}

// Valid reports whether s parses as a structurally valid IBAN with correct
// check digits for a supported country.
func Valid(s string) bool {
	_, err := parseIBAN(s)
	return err == nil
}

// Regenerate replaces the account-holder part of an IBAN while preserving
// its country and bank identifier, and returns the result in compact form.
// Invalid or unsupported input is returned unmodified.
func Regenerate(old string) string {
	ib, err := parseIBAN(old)
	if err != nil {
		slog.Warn("old IBAN is invalid, leaving it unmodified", "iban", old, "err", err)
		return old
	}
	bban, err := formats[ib.Country].regenerate(ib.BBAN)
	if err != nil {
		slog.Warn("cannot regenerate IBAN, leaving it unmodified", "iban", old, "err", err)
		return old
	}
	check, err := computeCheckDigits(ib.Country, bban)
	if err != nil {
		slog.Warn("cannot regenerate IBAN, leaving it unmodified", "iban", old, "err", err)
		return old
	}
	return ib.Country + check + bban
}

// Random generates a random valid IBAN for the given country. The bank
// identifier is random as well and need not belong to any real bank; use
// Regenerate to obfuscate an existing number instead.
func Random(countryCode string) (string, error) {
	cc := compact(countryCode)
	if len(cc) != 2 {
		return "", fmt.Errorf("country code must have 2 letters")
	}
	f, ok := formats[cc]
	if !ok {
		return "", fmt.Errorf("unsupported country %q", cc)
	}
	bban, err := f.build(f.spec.BankCharset.random(f.spec.BankLength))
	if err != nil {
		return "", err
	}
	check, err := computeCheckDigits(cc, bban)
	if err != nil {
		return "", err
	}
	return cc + check + bban, nil
}

// RegenerateBBAN regenerates a bare BBAN, preserving the bank identifier.
// The country cannot be inferred from the number itself and must be supplied.
// Invalid or unsupported input is returned unmodified.
func RegenerateBBAN(countryCode, old string) string {
	cc := compact(countryCode)
	f, ok := formats[cc]
	if !ok {
		slog.Warn("unsupported country, leaving BBAN unmodified", "bban", old, "country", countryCode)
		return old
	}
	c := compact(old)
	if f.regenerateNational != nil {
		out, err := f.regenerateNational(f.spec, c)
		if err != nil {
			slog.Warn("old BBAN is invalid, leaving it unmodified", "bban", old, "country", cc, "err", err)
			return old
		}
		return out
	}
	if !f.spec.validate(c) {
		slog.Warn("old BBAN is invalid, leaving it unmodified", "bban", old, "country", cc)
		return old
	}
	out, err := f.regenerate(c)
	if err != nil {
		slog.Warn("cannot regenerate BBAN, leaving it unmodified", "bban", old, "country", cc, "err", err)
		return old
	}
	return out
}
