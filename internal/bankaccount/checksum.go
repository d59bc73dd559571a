package bankaccount

import "fmt"

// checksumRetryLimit bounds the attempts to find an account body whose
// embedded check digit is representable. On exhaustion the caller degrades
// to returning the original value.
const checksumRetryLimit = 100

// luhnCheckDigit returns the digit that, appended to payload, makes the
// whole number pass the Luhn check. Doubling starts at the rightmost payload
// digit, which sits next to the future check digit.
func luhnCheckDigit(payload string) int {
	sum := 0
	double := true
	for i := len(payload) - 1; i >= 0; i-- {
		d := int(payload[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

// luhnValid reports whether the full digit string, check digit included,
// passes the Luhn check.
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// mod11Weights is the Norwegian weight cycle, applied from the rightmost
// payload digit outward.
var mod11Weights = [6]int{2, 3, 4, 5, 6, 7}

// mod11Invalid marks a payload whose weighted remainder has no valid check
// digit. Such account bodies must be discarded and regenerated.
const mod11Invalid = 10

// mod11CheckDigit returns the MOD11 control digit for payload, or
// mod11Invalid when the remainder is 10.
func mod11CheckDigit(payload string) int {
	sum := 0
	for i := 0; i < len(payload); i++ {
		d := int(payload[len(payload)-1-i] - '0')
		sum += d * mod11Weights[i%6]
	}
	mod := 11 - sum%11
	if mod == 11 {
		return 0
	}
	return mod
}

// mod11Valid reports whether the full digit string ends in the correct
// MOD11 control digit.
func mod11Valid(number string) bool {
	if len(number) < 2 {
		return false
	}
	payload := number[:len(number)-1]
	check := int(number[len(number)-1] - '0')
	c := mod11CheckDigit(payload)
	return c != mod11Invalid && c == check
}

// cinOddValues holds the CIN weight of each character value (0-9, A-Z) at
// odd positions. Even positions contribute their plain value.
var cinOddValues = [26]int{
	1, 0, 5, 7, 9, 13, 15, 17, 19, 21,
	2, 4, 18, 20, 11, 3, 6, 8, 12, 14,
	16, 10, 22, 25, 24, 23,
}

// cinChar computes the Italian CIN control letter over the bank, branch and
// account codes in BBAN order. Positions are 1-based: the first character is
// an odd position.
func cinChar(code string) (byte, error) {
	total := 0
	for i := 0; i < len(code); i++ {
		v, err := cinValue(code[i])
		if err != nil {
			return 0, err
		}
		if i%2 == 0 {
			total += cinOddValues[v]
		} else {
			total += v
		}
	}
	return byte('A' + total%26), nil
}

// cinValue maps digits to 0-9 and uppercase letters to 0-25, the shared
// value scale of the CIN tables.
func cinValue(c byte) (int, error) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), nil
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), nil
	}
	return 0, fmt.Errorf("character %q not allowed in a BBAN", c)
}
