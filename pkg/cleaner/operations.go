// pkg/cleaner/operations.go
package cleaner

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	// DateSentinel replaces any date that cannot be read as month/day/year
	DateSentinel = "1900-01-01"

	// EmailDomainSentinel replaces an email address without an '@'
	EmailDomainSentinel = ""

	dateLayout = "2006-01-02"

	// ASCII punctuation, the same set Python's string.punctuation carries
	asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// Normalizer maps one raw field value to its canonical form. Normalizers never fail.
type Normalizer func(string) string

// NormalizeDate converts a month/day/year value to YYYY-MM-DD.
//
// The value is split into runs of ASCII digits; everything else separates runs.
// Three runs are read as month, day, year. A single run of exactly eight digits
// is read positionally as MMDDYYYY. Month and day take one or two digits and the
// year exactly four; the result must be a real calendar date. Anything else
// returns DateSentinel.
func NormalizeDate(raw string) string {
	month, day, year, ok := splitDateDigits(raw)
	if !ok {
		return DateSentinel
	}

	if len(month) > 2 || len(day) > 2 || len(year) != 4 {
		return DateSentinel
	}

	m, errM := strconv.Atoi(month)
	d, errD := strconv.Atoi(day)
	y, errY := strconv.Atoi(year)
	if errM != nil || errD != nil || errY != nil || y < 1 {
		return DateSentinel
	}

	// time.Date normalizes overflow (Feb 30 -> Mar 1), so compare back
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return DateSentinel
	}

	return t.Format(dateLayout)
}

// splitDateDigits returns the month, day and year digit groups of a raw date
func splitDateDigits(raw string) (string, string, string, bool) {
	runs := digitRuns(raw)

	switch {
	case len(runs) == 3:
		return runs[0], runs[1], runs[2], true
	case len(runs) == 1 && len(runs[0]) == 8:
		run := runs[0]
		return run[0:2], run[2:4], run[4:8], true
	default:
		return "", "", "", false
	}
}

// digitRuns splits s into maximal runs of ASCII digits
func digitRuns(s string) []string {
	var runs []string
	start := -1
	for i := 0; i < len(s); i++ {
		if isASCIIDigit(rune(s[i])) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, s[start:])
	}
	return runs
}

// NormalizeNumeric removes every character that is not an ASCII digit
func NormalizeNumeric(raw string) string {
	return strings.Map(func(r rune) rune {
		if isASCIIDigit(r) {
			return r
		}
		return -1
	}, raw)
}

// NormalizeDecimal keeps ASCII digits and the first decimal point
func NormalizeDecimal(raw string) string {
	seenPoint := false
	return strings.Map(func(r rune) rune {
		switch {
		case isASCIIDigit(r):
			return r
		case r == '.' && !seenPoint:
			seenPoint = true
			return r
		default:
			return -1
		}
	}, raw)
}

// NormalizeText trims leading and trailing whitespace
func NormalizeText(raw string) string {
	return strings.TrimSpace(raw)
}

// StripDigits removes all digit characters
func StripDigits(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, raw)
}

// StripPunctuation removes ASCII punctuation characters
func StripPunctuation(raw string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, raw)
}

// EmailDomain returns the text after the last '@', or EmailDomainSentinel
// when the value has no '@'
func EmailDomain(raw string) string {
	i := strings.LastIndex(raw, "@")
	if i < 0 {
		return EmailDomainSentinel
	}
	return strings.TrimSpace(raw[i+1:])
}

// YesNoToBool maps Y/N flags to True/False. Anything but an exact Y is False.
func YesNoToBool(raw string) string {
	if NormalizeText(raw) == "Y" {
		return "True"
	}
	return "False"
}

// MapValues returns a normalizer replacing exact (trimmed) matches with their label.
// Values without a mapping are returned unchanged.
func MapValues(mapping map[string]string) Normalizer {
	return func(raw string) string {
		if label, ok := mapping[NormalizeText(raw)]; ok {
			return label
		}
		return raw
	}
}

// Constant returns a normalizer that always yields value
func Constant(value string) Normalizer {
	return func(string) string {
		return value
	}
}

// DefaultIfEmpty returns a normalizer that fills empty values
func DefaultIfEmpty(value string) Normalizer {
	return func(raw string) string {
		if NormalizeText(raw) == "" {
			return value
		}
		return raw
	}
}

// isASCIIDigit reports whether r is 0-9
func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
