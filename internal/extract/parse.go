package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tilbrook/vendex/internal/vendor"
)

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// stripCodeFence unwraps a markdown code fence anywhere in the response;
// models routinely wrap JSON payloads despite instructions not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if m := codeFenceRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

// locateJSON finds the outermost JSON array or object in text that may be
// surrounded by prose. The earliest bracket wins, so an array or object
// embedded inside another payload's string value is never picked over the
// payload itself. Returns "" when no balanced payload exists.
func locateJSON(s string) string {
	s = stripCodeFence(s)
	starts := []int{strings.IndexByte(s, '['), strings.IndexByte(s, '{')}
	sort.Ints(starts)
	for _, start := range starts {
		if start < 0 {
			continue
		}
		if end := balancedEnd(s, start); end > start {
			return s[start : end+1]
		}
	}
	return ""
}

// balancedEnd scans from an opening bracket to its matching close, tracking
// string literals and escapes.
func balancedEnd(s string, start int) int {
	depth := 0
	inStr := false
	esc := false
	open := s[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}
	for i := start; i < len(s); i++ {
		c := s[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// recordPayload mirrors the field contract. Rating tolerates both numbers
// and numeric strings.
type recordPayload struct {
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	ContactPerson string          `json:"contact_person"`
	ContactTitle  string          `json:"contact_title"`
	VendorType    string          `json:"vendor_type"`
	Status        string          `json:"status"`
	Address       string          `json:"address"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	ZipCode       string          `json:"zip_code"`
	Website       string          `json:"website"`
	Description   string          `json:"description"`
	Rating        json.RawMessage `json:"rating"`
}

func (p recordPayload) record() vendor.Record {
	r := vendor.Record{
		Name:          strings.TrimSpace(p.Name),
		Email:         strings.TrimSpace(p.Email),
		Phone:         strings.TrimSpace(p.Phone),
		ContactPerson: strings.TrimSpace(p.ContactPerson),
		ContactTitle:  strings.TrimSpace(p.ContactTitle),
		VendorType:    strings.TrimSpace(p.VendorType),
		Status:        strings.TrimSpace(p.Status),
		Address:       strings.TrimSpace(p.Address),
		City:          strings.TrimSpace(p.City),
		State:         strings.TrimSpace(p.State),
		ZipCode:       strings.TrimSpace(p.ZipCode),
		Website:       strings.TrimSpace(p.Website),
		Description:   strings.TrimSpace(p.Description),
	}
	if len(p.Rating) > 0 {
		var n int
		if err := json.Unmarshal(p.Rating, &n); err == nil && n >= 1 && n <= 5 {
			r.Rating = &n
		} else {
			var s string
			if err := json.Unmarshal(p.Rating, &s); err == nil {
				var m int
				if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &m); err == nil && m >= 1 && m <= 5 {
					r.Rating = &m
				}
			}
		}
	}
	return r
}

// decodeRecords parses an AI response into vendor records, tolerating
// code-fence wrapping, surrounding prose, and either a JSON array or a
// single object.
func decodeRecords(response string) ([]vendor.Record, error) {
	payload := locateJSON(response)
	if payload == "" {
		return nil, fmt.Errorf("no JSON payload in response (raw: %s)", truncate(response, 200))
	}

	if strings.HasPrefix(payload, "[") {
		var many []recordPayload
		if err := json.Unmarshal([]byte(payload), &many); err != nil {
			return nil, fmt.Errorf("parse record array: %w (raw: %s)", err, truncate(payload, 200))
		}
		out := make([]vendor.Record, 0, len(many))
		for _, p := range many {
			out = append(out, p.record())
		}
		return out, nil
	}

	var one recordPayload
	if err := json.Unmarshal([]byte(payload), &one); err != nil {
		return nil, fmt.Errorf("parse record object: %w (raw: %s)", err, truncate(payload, 200))
	}
	return []vendor.Record{one.record()}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
