package entity

import "regexp"

// Shared field patterns used by the heuristic extractor and the fallback
// enhancer. Phone matching is deliberately US-centric; the source data this
// service sees is domestic vendor paperwork.
var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

	phoneRe = regexp.MustCompile(`(?:\+?1[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]\d{4}`)

	websiteRe = regexp.MustCompile(`(?i)(?:https?://[^\s,;]+|www\.[^\s,;]+|\b[a-z0-9][a-z0-9\-]*\.(?:com|net|org|biz|io|co|us)\b)`)

	// Street address: leading number followed by words ending in a street
	// suffix keyword.
	addressRe = regexp.MustCompile(`(?i)\b\d{1,6}\s+[A-Za-z0-9.'\- ]+?\s(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Court|Ct|Place|Pl|Circle|Cir|Parkway|Pkwy|Highway|Hwy|Suite|Ste)\.?\b`)

	// Trailing "STATE ZIP" token: two-letter state followed by a 5-digit ZIP
	// with optional -4 extension.
	stateZipRe = regexp.MustCompile(`\b([A-Z]{2})[,\s]+(\d{5}(?:-\d{4})?)\b`)

	businessSuffixRe = regexp.MustCompile(`(?i)\b(?:Inc|Incorporated|LLC|L\.L\.C|Corp|Corporation|Ltd|Limited|Company|Co)\.?(?:\s|,|$)`)
)

// labeled-field patterns, anchored at line start, value captured to end of
// line. Order matters only for readability; each is applied independently.
var (
	labelCompanyRe = regexp.MustCompile(`(?im)^\s*(?:company|business|vendor)(?:\s*name)?\s*[:\-]\s*(.+)$`)
	labelAddressRe = regexp.MustCompile(`(?im)^\s*address\s*[:\-]\s*(.+)$`)
	labelContactRe = regexp.MustCompile(`(?im)^\s*contact(?:\s*person)?\s*[:\-]\s*(.+)$`)
	labelPhoneRe   = regexp.MustCompile(`(?im)^\s*(?:phone|telephone|tel|contact\s*number)\s*(?:#|no\.?)?\s*[:\-]\s*(.+)$`)
	labelEmailRe   = regexp.MustCompile(`(?im)^\s*e?-?mail\s*[:\-]\s*(.+)$`)
	labelWebsiteRe = regexp.MustCompile(`(?im)^\s*(?:website|web|url)\s*[:\-]\s*(.+)$`)

	// Any line that starts with a recognized label, used to skip label lines
	// when hunting for an unlabeled company name.
	anyLabelRe = regexp.MustCompile(`(?i)^\s*(?:company|business|vendor|address|contact|phone|telephone|tel|e?-?mail|website|web|url)\b[^:\-]{0,12}[:\-]`)
)

// HasBusinessSuffix reports whether text mentions a business-entity suffix
// keyword (Inc, LLC, Corp, Ltd, Company, Co).
func HasBusinessSuffix(text string) bool {
	return businessSuffixRe.MatchString(text)
}

// FindEmail returns the first email-like token in text, or "".
func FindEmail(text string) string {
	return emailRe.FindString(text)
}

// FindPhones returns all US-style phone numbers in text, in order.
func FindPhones(text string) []string {
	return phoneRe.FindAllString(text, -1)
}

// FindWebsite returns the first website/domain token in text that is not
// part of an email address, or "".
func FindWebsite(text string) string {
	masked := emailRe.ReplaceAllStringFunc(text, func(m string) string {
		return blank(len(m))
	})
	return websiteRe.FindString(masked)
}

// FindAddress returns the first street-address-like span in text, or "".
func FindAddress(text string) string {
	return addressRe.FindString(text)
}

func blank(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
