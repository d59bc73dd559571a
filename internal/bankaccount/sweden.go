package bankaccount

import (
	"fmt"
	"regexp"

	"github.com/mtoporowski/stovokor/internal/randutil"
)

// Swedish BBANs embedded in an IBAN always span 20 digits, but the national
// account formats vary per bank, and so does the national-to-IBAN mapping.
// Each format pairs a national pattern with the fixed digit prefix the bank
// uses inside the IBAN; the last capture group is always the account-holder
// part that regeneration randomizes.
const seIBANPartLength = 20

type seFormat struct {
	name     string
	national *regexp.Regexp
	ibanPart *regexp.Regexp
}

var seFormats = []seFormat{
	{
		name:     "Danske",
		national: regexp.MustCompile(`^1(\d{3})(\d{11})$`),
		ibanPart: regexp.MustCompile(`^120000000(\d{11})$`),
	},
	{
		name:     "Nordea",
		national: regexp.MustCompile(`^3(\d{3})(\d{11})$`),
		ibanPart: regexp.MustCompile(`^300000000(\d{11})$`),
	},
	{
		name:     "ICA",
		national: regexp.MustCompile(`^927(\d)(\d{7})$`),
		ibanPart: regexp.MustCompile(`^927000000927(\d)(\d{7})$`),
	},
	{
		name:     "SEB",
		national: regexp.MustCompile(`^5(\d{3})(\d{7})$`),
		ibanPart: regexp.MustCompile(`^5000000005(\d{3})(\d{7})$`),
	},
	{
		name:     "Handelsbanken",
		national: regexp.MustCompile(`^6(\d{3})(\d{9})$`),
		ibanPart: regexp.MustCompile(`^60000000000(\d{9})$`),
	},
	{
		name:     "Swedbank",
		national: regexp.MustCompile(`^7(\d{3})(\d{7})$`),
		ibanPart: regexp.MustCompile(`^8000000007(\d{3})(\d{7})$`),
	},
	{
		name:     "Swedbank",
		national: regexp.MustCompile(`^8(\d{4})(\d{10})$`),
		ibanPart: regexp.MustCompile(`^800008(\d{4})(\d{10})$`),
	},
	{
		name:     "Plusgiro",
		national: regexp.MustCompile(`^(\d{8})$`),
		ibanPart: regexp.MustCompile(`^950000996000(\d{8})$`),
	},
}

// swedishRegenerateIBANPart regenerates the 20-digit BBAN of a Swedish IBAN.
// When the number matches a known bank format, the bank-specific prefix is
// preserved and only the account digits are redrawn. Otherwise the standard
// 3-digit bank code handling applies.
func swedishRegenerateIBANPart(spec countrySpec, old string) (string, error) {
	for _, f := range seFormats {
		m := f.ibanPart.FindStringSubmatch(old)
		if m == nil {
			continue
		}
		account := m[len(m)-1]
		prefix := old[:seIBANPartLength-len(account)]
		return prefix + randutil.Numeric(len(account)), nil
	}
	return genericBBAN(spec, spec.bankCode(old))
}

// swedishRegenerateNational regenerates a national Swedish account number,
// which may have any of the bank-specific lengths. An unrecognized format is
// unsupported: the caller passes the input through unmodified.
func swedishRegenerateNational(spec countrySpec, old string) (string, error) {
	for _, f := range seFormats {
		m := f.national.FindStringSubmatch(old)
		if m == nil {
			continue
		}
		account := m[len(m)-1]
		prefix := old[:len(old)-len(account)]
		return prefix + randutil.Numeric(len(account)), nil
	}
	if len(old) == seIBANPartLength && numeric.valid(old) {
		return swedishRegenerateIBANPart(spec, old)
	}
	return "", fmt.Errorf("unrecognized Swedish account format")
}
