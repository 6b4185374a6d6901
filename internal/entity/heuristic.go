package entity

import (
	"strings"
	"unicode"

	"github.com/tilbrook/vendex/internal/vendor"
)

// ExtractHeuristic runs tier-2 unstructured extraction: independent pattern
// scans for each contact field plus a company-name guess from the first
// plausible line. Applied only when no field labels matched.
func ExtractHeuristic(section string) vendor.Classification {
	c := vendor.Classification{RawText: section}

	c.Email = FindEmail(section)
	if phones := FindPhones(section); len(phones) > 0 {
		c.Phone = strings.TrimSpace(phones[0])
	}
	c.Website = FindWebsite(section)

	if addr := FindAddress(section); addr != "" {
		street, city, state, zip := DecodeAddress(addressWithTail(section, addr))
		c.Address = street
		c.City = city
		c.State = state
		c.ZipCode = zip
	}

	c.CompanyName = GuessCompanyName(section)
	return c
}

// addressWithTail extends a matched street address with the remainder of its
// line, so a trailing "City ST 12345" can still be decoded.
func addressWithTail(section, addr string) string {
	idx := strings.Index(section, addr)
	if idx < 0 {
		return addr
	}
	rest := section[idx:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	return rest
}

// GuessCompanyName picks a company-name candidate from the first line that
// is not a label line: either it carries a business-entity suffix, or it is
// short, title-cased and multi-word.
func GuessCompanyName(section string) string {
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || anyLabelRe.MatchString(line) {
			continue
		}

		if HasBusinessSuffix(line) {
			return cleanNameLine(line)
		}
		if looksLikeTitleCaseName(line) {
			return cleanNameLine(line)
		}
		return ""
	}
	return ""
}

// cleanNameLine strips phone numbers, emails and trailing punctuation from a
// candidate name line.
func cleanNameLine(line string) string {
	line = phoneRe.ReplaceAllString(line, "")
	line = emailRe.ReplaceAllString(line, "")
	return strings.TrimRight(strings.TrimSpace(line), " ,;-")
}

func looksLikeTitleCaseName(line string) bool {
	if len(line) > 60 {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 2 {
		return false
	}
	for _, w := range words {
		r := []rune(w)[0]
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
