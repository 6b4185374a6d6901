package entity

import (
	"strings"

	"github.com/tilbrook/vendex/internal/vendor"
)

// Enhance scavenges contact data from the full section text that the primary
// extractor missed. It never overwrites a populated field; phone numbers are
// merged (compared digits-only) rather than replaced.
func Enhance(r vendor.Record, sourceText string) vendor.Record {
	if sourceText == "" {
		return r
	}

	if r.Email == "" {
		r.Email = FindEmail(sourceText)
	}
	if r.Website == "" {
		r.Website = FindWebsite(sourceText)
	}
	if r.Address == "" {
		if addr := FindAddress(sourceText); addr != "" {
			street, city, state, zip := DecodeAddress(addressWithTail(sourceText, addr))
			r.Address = street
			if r.City == "" {
				r.City = city
			}
			if r.State == "" {
				r.State = state
			}
			if r.ZipCode == "" {
				r.ZipCode = zip
			}
		}
	}
	if r.State == "" || r.ZipCode == "" {
		if m := stateZipRe.FindStringSubmatch(sourceText); m != nil {
			if r.State == "" {
				r.State = m[1]
			}
			if r.ZipCode == "" {
				r.ZipCode = m[2]
			}
		}
	}

	r.Phone = mergePhones(r.Phone, FindPhones(sourceText))
	return r
}

// mergePhones appends found numbers whose digit form is not already present.
func mergePhones(existing string, found []string) string {
	have := make(map[string]bool)
	for _, p := range strings.Split(existing, ",") {
		if d := vendor.DigitsOnly(p); d != "" {
			have[d] = true
		}
	}
	merged := strings.TrimSpace(existing)
	for _, p := range found {
		d := vendor.DigitsOnly(p)
		if d == "" || have[d] {
			continue
		}
		have[d] = true
		if merged == "" {
			merged = strings.TrimSpace(p)
		} else {
			merged += ", " + strings.TrimSpace(p)
		}
	}
	return merged
}
