// Package gen implements the generator expression surface: placeholder
// expansion, shell-style tokenization, and dispatch to the value generators.
//
// An expression names a generator followed by positional and flag arguments,
// e.g. "alphanum -l 13" or "num --min 1 --max 9999". Dispatch goes through a
// fixed registry, so an unknown generator name is detectable before any
// document is touched.
package gen

import (
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/pflag"

	"github.com/mtoporowski/stovokor/internal/bankaccount"
	"github.com/mtoporowski/stovokor/internal/randutil"
)

type runFunc func(args []string) (string, error)

// generators is the dispatch registry. Entries are fixed at build time; the
// rule configuration selects among them by name.
var generators = map[string]runFunc{
	"const":           genConst,
	"alphanum":        genAlphanum,
	"num":             genNum,
	"namelike":        genNamelike,
	"name_regenerate": genNameRegenerate,
	"klingon":         genKlingon,
	"iban_regenerate": genIBANRegenerate,
	"iban_random":     genIBANRandom,
	"bban_regenerate": genBBANRegenerate,
}

// Known reports whether a generator with the given name is registered.
func Known(name string) bool {
	_, ok := generators[name]
	return ok
}

// Names returns the registered generator names in sorted order.
func Names() []string {
	names := make([]string, 0, len(generators))
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate dispatches a tokenized generator expression: args[0] is the
// generator name, the rest its arguments. Unknown names return an
// UnknownGeneratorError, bad arguments an ArgumentError.
func Generate(args []string) (string, error) {
	if len(args) == 0 {
		return "", &UnknownGeneratorError{Name: ""}
	}
	fn, ok := generators[args[0]]
	if !ok {
		return "", &UnknownGeneratorError{Name: args[0]}
	}
	return fn(args[1:])
}

// newFlagSet builds a pflag set for one generator. Parse errors are wrapped
// by the caller, so the set itself stays quiet.
func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func genConst(args []string) (string, error) {
	fs := newFlagSet("const")
	if err := fs.Parse(args); err != nil {
		return "", &ArgumentError{Generator: "const", Message: "bad arguments", Err: err}
	}
	if fs.NArg() != 1 {
		return "", argErrorf("const", "expected exactly one value, got %d arguments", fs.NArg())
	}
	return fs.Arg(0), nil
}

func genAlphanum(args []string) (string, error) {
	fs := newFlagSet("alphanum")
	length := fs.IntP("length", "l", 0, "generated string length")
	if err := fs.Parse(args); err != nil {
		return "", &ArgumentError{Generator: "alphanum", Message: "bad arguments", Err: err}
	}
	if !fs.Changed("length") {
		return "", argErrorf("alphanum", "length (-l) is required")
	}
	if *length < 0 {
		return "", argErrorf("alphanum", "length must not be negative, got %d", *length)
	}
	return randutil.WithChars(*length, randutil.Alphanumeric), nil
}

// maxNumLength keeps 10^length-1 representable when capping a range.
const maxNumLength = 18

func genNum(args []string) (string, error) {
	fs := newFlagSet("num")
	length := fs.IntP("length", "l", 0, "generated number length")
	minVal := fs.Int64("min", 0, "minimal value")
	maxVal := fs.Int64("max", 0, "maximal value")
	if err := fs.Parse(args); err != nil {
		return "", &ArgumentError{Generator: "num", Message: "bad arguments", Err: err}
	}

	hasLength := fs.Changed("length")
	if fs.Changed("min") != fs.Changed("max") {
		return "", argErrorf("num", "min and max must be given together")
	}

	if fs.Changed("min") {
		lo, hi := *minVal, *maxVal
		if lo > hi {
			return "", argErrorf("num", "min %d exceeds max %d", lo, hi)
		}
		if hasLength {
			if *length < 1 || *length > maxNumLength {
				return "", argErrorf("num", "length must be between 1 and %d when combined with a range", maxNumLength)
			}
			limit := pow10(*length) - 1
			if hi > limit {
				hi = limit
			}
			if lo > hi {
				return "", argErrorf("num", "min %d does not fit in %d digits", lo, *length)
			}
		}
		n := randutil.IntBetween(lo, hi)
		s := strconv.FormatInt(n, 10)
		if hasLength && len(s) < *length {
			s = strings.Repeat("0", *length-len(s)) + s
		}
		return s, nil
	}

	if hasLength {
		if *length < 0 {
			return "", argErrorf("num", "length must not be negative, got %d", *length)
		}
		return randutil.Numeric(*length), nil
	}
	return "", argErrorf("num", "either a length (-l) or a min/max range is required")
}

func pow10(n int) int64 {
	v := int64(1)
	for range n {
		v *= 10
	}
	return v
}

func genNamelike(args []string) (string, error) {
	fs := newFlagSet("namelike")
	if err := fs.Parse(args); err != nil {
		return "", &ArgumentError{Generator: "namelike", Message: "bad arguments", Err: err}
	}
	if fs.NArg() != 0 {
		return "", argErrorf("namelike", "takes no arguments")
	}
	name := randutil.AlphaCapitalizedRange(5, 10)
	surname := randutil.AlphaCapitalizedRange(5, 10)
	return name + " " + surname, nil
}

// genNameRegenerate replaces every letter of the input with a random letter
// of the same case, leaving digits, spaces and punctuation in place. The
// output has the same length and shape as the input.
func genNameRegenerate(args []string) (string, error) {
	fs := newFlagSet("name_regenerate")
	if err := fs.Parse(args); err != nil {
		return "", &ArgumentError{Generator: "name_regenerate", Message: "bad arguments", Err: err}
	}
	if fs.NArg() != 1 {
		return "", argErrorf("name_regenerate", "expected exactly one name, got %d arguments", fs.NArg())
	}

	var b strings.Builder
	for _, r := range fs.Arg(0) {
		switch {
		case unicode.IsUpper(r):
			b.WriteString(randutil.WithChars(1, randutil.UpperLetters))
		case unicode.IsLower(r):
			b.WriteString(randutil.WithChars(1, randutil.LowerLetters))
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

var klingonQuotes = []string{
	"baH",
	"Ghos",
	"gik'tal",
	"he' HImaH",
	"Mahk-cha",
	"Qapla'",
	"matlh! jol yIchu'",
	"taH pagh taHbe'",
	"Heh Cho'mruak tah",
}

func genKlingon(args []string) (string, error) {
	fs := newFlagSet("klingon")
	if err := fs.Parse(args); err != nil {
		return "", &ArgumentError{Generator: "klingon", Message: "bad arguments", Err: err}
	}
	if fs.NArg() != 0 {
		return "", argErrorf("klingon", "takes no arguments")
	}
	return randutil.Pick(klingonQuotes), nil
}

func genIBANRegenerate(args []string) (string, error) {
	fs := newFlagSet("iban_regenerate")
	if err := fs.Parse(args); err != nil {
		return "", &ArgumentError{Generator: "iban_regenerate", Message: "bad arguments", Err: err}
	}
	if fs.NArg() != 1 {
		return "", argErrorf("iban_regenerate", "expected exactly one IBAN, got %d arguments", fs.NArg())
	}
	return bankaccount.Regenerate(fs.Arg(0)), nil
}

func genIBANRandom(args []string) (string, error) {
	fs := newFlagSet("iban_random")
	if err := fs.Parse(args); err != nil {
		return "", &ArgumentError{Generator: "iban_random", Message: "bad arguments", Err: err}
	}
	if fs.NArg() != 1 {
		return "", argErrorf("iban_random", "expected exactly one country code, got %d arguments", fs.NArg())
	}
	iban, err := bankaccount.Random(fs.Arg(0))
	if err != nil {
		return "", &ArgumentError{Generator: "iban_random", Message: "cannot generate IBAN", Err: err}
	}
	return iban, nil
}

func genBBANRegenerate(args []string) (string, error) {
	fs := newFlagSet("bban_regenerate")
	country := fs.StringP("country", "c", "", "2-letter country code")
	if err := fs.Parse(args); err != nil {
		return "", &ArgumentError{Generator: "bban_regenerate", Message: "bad arguments", Err: err}
	}
	if *country == "" {
		return "", argErrorf("bban_regenerate", "country code (-c) is required")
	}
	if fs.NArg() != 1 {
		return "", argErrorf("bban_regenerate", "expected exactly one BBAN, got %d arguments", fs.NArg())
	}
	return bankaccount.RegenerateBBAN(*country, fs.Arg(0)), nil
}
