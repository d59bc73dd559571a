package bankaccount

import (
	"fmt"
	"strconv"

	"github.com/mtoporowski/stovokor/internal/randutil"
)

// charset classifies the characters allowed in a BBAN field, following the
// SWIFT IBAN registry notation.
type charset byte

const (
	numeric      charset = 'n' // digits 0-9
	alphaUpper   charset = 'a' // uppercase letters A-Z
	alphanumeric charset = 'c' // uppercase letters and digits
)

func (c charset) random(n int) string {
	switch c {
	case alphaUpper:
		return randutil.WithChars(n, randutil.UpperLetters)
	case alphanumeric:
		return randutil.WithChars(n, randutil.UpperAlphanumeric)
	default:
		return randutil.Numeric(n)
	}
}

func (c charset) valid(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch c {
		case numeric:
			if b < '0' || b > '9' {
				return false
			}
		case alphaUpper:
			if b < 'A' || b > 'Z' {
				return false
			}
		case alphanumeric:
			if (b < '0' || b > '9') && (b < 'A' || b > 'Z') {
				return false
			}
		}
	}
	return true
}

// countrySpec describes the BBAN layout of one country: an optional national
// check prefix (the Italian CIN), the bank identifier (bank plus branch
// codes) that regeneration preserves, and the account-holder part that it
// randomizes.
type countrySpec struct {
	PrefixLength   int
	BankLength     int
	BankCharset    charset
	AccountLength  int
	AccountCharset charset
}

func (s countrySpec) length() int {
	return s.PrefixLength + s.BankLength + s.AccountLength
}

// bankCode extracts the preserved bank identifier from a BBAN.
func (s countrySpec) bankCode(bban string) string {
	return bban[s.PrefixLength : s.PrefixLength+s.BankLength]
}

// validate checks length and per-field character classes.
func (s countrySpec) validate(bban string) bool {
	if len(bban) != s.length() {
		return false
	}
	if s.PrefixLength > 0 && !alphaUpper.valid(bban[:s.PrefixLength]) {
		return false
	}
	if !s.BankCharset.valid(s.bankCode(bban)) {
		return false
	}
	return s.AccountCharset.valid(bban[s.PrefixLength+s.BankLength:])
}

// countryFormat bundles a country's BBAN layout with its national checksum
// behavior. Adding a country means registering a new bundle here.
type countryFormat struct {
	spec countrySpec

	// buildBBAN assembles a fresh BBAN around a given bank identifier,
	// computing any embedded national check digits. nil means the generic
	// layout-driven assembly with no checksum constraint.
	buildBBAN func(spec countrySpec, bank string) (string, error)

	// regenerateBBAN overrides the default regeneration (preserve bank code,
	// rebuild the rest) for countries where the preserved portion depends on
	// the input, such as the Swedish bank formats.
	regenerateBBAN func(spec countrySpec, old string) (string, error)

	// regenerateNational handles national account formats that differ from
	// the BBAN embedded in the IBAN. nil means they are identical.
	regenerateNational func(spec countrySpec, old string) (string, error)
}

func (f countryFormat) build(bank string) (string, error) {
	if f.buildBBAN != nil {
		return f.buildBBAN(f.spec, bank)
	}
	return genericBBAN(f.spec, bank)
}

func (f countryFormat) regenerate(old string) (string, error) {
	if f.regenerateBBAN != nil {
		return f.regenerateBBAN(f.spec, old)
	}
	return f.build(f.spec.bankCode(old))
}

// genericBBAN randomizes the account-holder part with no embedded checksum.
// The result is a correct IBAN body, though not necessarily a correct
// country-specific account number.
func genericBBAN(spec countrySpec, bank string) (string, error) {
	return bank + spec.AccountCharset.random(spec.AccountLength), nil
}

// finnishBBAN appends a Luhn check digit computed over the bank code and the
// random account body.
func finnishBBAN(spec countrySpec, bank string) (string, error) {
	body := randutil.Numeric(spec.AccountLength - 1)
	check := luhnCheckDigit(bank + body)
	return bank + body + strconv.Itoa(check), nil
}

// norwegianBBAN appends a MOD11 control digit. A remainder of 10 has no
// digit representation, so the body is redrawn up to checksumRetryLimit
// times before giving up.
func norwegianBBAN(spec countrySpec, bank string) (string, error) {
	for range checksumRetryLimit {
		body := randutil.Numeric(spec.AccountLength - 1)
		check := mod11CheckDigit(bank + body)
		if check == mod11Invalid {
			continue
		}
		return bank + body + strconv.Itoa(check), nil
	}
	return "", fmt.Errorf("no MOD11-checkable account number found in %d attempts", checksumRetryLimit)
}

// italianBBAN prefixes the CIN control letter computed over the bank and
// account codes.
func italianBBAN(spec countrySpec, bank string) (string, error) {
	account := randutil.Numeric(spec.AccountLength)
	cin, err := cinChar(bank + account)
	if err != nil {
		return "", err
	}
	return string(cin) + bank + account, nil
}

// formats is the country registry. Bank lengths include branch codes, since
// both are preserved on regeneration.
var formats = map[string]countryFormat{
	"AT": {spec: countrySpec{0, 5, numeric, 11, numeric}},
	"BE": {spec: countrySpec{0, 3, numeric, 9, numeric}},
	"CH": {spec: countrySpec{0, 5, numeric, 12, alphanumeric}},
	"CY": {spec: countrySpec{0, 8, numeric, 16, alphanumeric}},
	"CZ": {spec: countrySpec{0, 4, numeric, 16, numeric}},
	"DE": {spec: countrySpec{0, 8, numeric, 10, numeric}},
	"DK": {spec: countrySpec{0, 4, numeric, 10, numeric}},
	"EE": {spec: countrySpec{0, 2, numeric, 14, numeric}},
	"ES": {spec: countrySpec{0, 8, numeric, 12, numeric}},
	"FI": {
		spec:      countrySpec{0, 6, numeric, 8, numeric},
		buildBBAN: finnishBBAN,
	},
	"FR": {spec: countrySpec{0, 10, numeric, 13, alphanumeric}},
	"GB": {spec: countrySpec{0, 10, alphanumeric, 8, numeric}},
	"IE": {spec: countrySpec{0, 10, alphanumeric, 8, numeric}},
	"IT": {
		spec:      countrySpec{1, 10, numeric, 12, alphanumeric},
		buildBBAN: italianBBAN,
	},
	"LT": {spec: countrySpec{0, 5, numeric, 11, numeric}},
	"LU": {spec: countrySpec{0, 3, numeric, 10, alphanumeric}},
	"LV": {spec: countrySpec{0, 4, alphaUpper, 13, alphanumeric}},
	"MC": {spec: countrySpec{0, 10, numeric, 13, alphanumeric}},
	"NL": {spec: countrySpec{0, 4, alphaUpper, 10, numeric}},
	"NO": {
		spec:      countrySpec{0, 4, numeric, 7, numeric},
		buildBBAN: norwegianBBAN,
	},
	"PL": {spec: countrySpec{0, 8, numeric, 16, numeric}},
	"PT": {spec: countrySpec{0, 8, numeric, 13, numeric}},
	"SE": {
		spec:               countrySpec{0, 3, numeric, 17, numeric},
		regenerateBBAN:     swedishRegenerateIBANPart,
		regenerateNational: swedishRegenerateNational,
	},
	"SI": {spec: countrySpec{0, 5, numeric, 10, numeric}},
	"SK": {spec: countrySpec{0, 4, numeric, 16, numeric}},
	// San Marino shares the Italian layout and CIN rule.
	"SM": {
		spec:      countrySpec{1, 10, numeric, 12, alphanumeric},
		buildBBAN: italianBBAN,
	},
}
