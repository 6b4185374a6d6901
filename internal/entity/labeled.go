package entity

import (
	"strings"

	"github.com/tilbrook/vendex/internal/vendor"
)

// ExtractLabeled runs tier-1 structured extraction: explicit field labels
// anchored at line start. The boolean result reports whether any label
// matched; when true the classification is final and no heuristic fallback
// should run, even if other labels are missing.
func ExtractLabeled(section string) (vendor.Classification, bool) {
	c := vendor.Classification{RawText: section}
	matched := false

	if m := labelCompanyRe.FindStringSubmatch(section); m != nil {
		c.CompanyName = strings.TrimSpace(m[1])
		matched = true
	}
	if m := labelContactRe.FindStringSubmatch(section); m != nil {
		c.ContactPerson = strings.TrimSpace(m[1])
		matched = true
	}
	if m := labelPhoneRe.FindStringSubmatch(section); m != nil {
		c.Phone = strings.TrimSpace(m[1])
		matched = true
	}
	if m := labelEmailRe.FindStringSubmatch(section); m != nil {
		c.Email = strings.TrimSpace(m[1])
		matched = true
	}
	if m := labelWebsiteRe.FindStringSubmatch(section); m != nil {
		c.Website = strings.TrimSpace(m[1])
		matched = true
	}
	if m := labelAddressRe.FindStringSubmatch(section); m != nil {
		street, city, state, zip := DecodeAddress(strings.TrimSpace(m[1]))
		c.Address = street
		c.City = city
		c.State = state
		c.ZipCode = zip
		matched = true
	}

	return c, matched
}

// DecodeAddress splits a single-line address into street, city, state and
// ZIP. The trailing "STATE ZIP" token is decoded first; the city is the
// address fragment immediately preceding the state token. Whatever cannot
// be decoded stays in the street part.
func DecodeAddress(value string) (street, city, state, zip string) {
	m := stateZipRe.FindStringSubmatchIndex(value)
	if m == nil {
		return value, "", "", ""
	}

	state = value[m[2]:m[3]]
	zip = value[m[4]:m[5]]

	head := strings.TrimRight(value[:m[0]], " ,")
	if idx := strings.LastIndex(head, ","); idx >= 0 {
		street = strings.TrimSpace(head[:idx])
		city = strings.TrimSpace(head[idx+1:])
	} else {
		// No comma: treat the last word run before the state as the city.
		fields := strings.Fields(head)
		if len(fields) > 1 {
			city = fields[len(fields)-1]
			street = strings.TrimSpace(strings.TrimSuffix(head, city))
		} else {
			street = head
		}
	}
	return street, city, state, zip
}
