// Package rowmap turns delimited/tabular rows into vendor candidates.
// Tabular input bypasses segmentation: one data row is one candidate.
package rowmap

import (
	"strconv"
	"strings"

	"github.com/tilbrook/vendex/internal/entity"
	"github.com/tilbrook/vendex/internal/vendor"
)

// Confidence assigned to rows mapped through recognized headers. Tabular
// data is already structured, so it scores above every text tier.
const RowConfidence = 0.95

// columnFields maps canonical header names to record fields. Headers are
// normalized to lowercase alphanumerics before lookup.
var columnFields = map[string]string{
	"name":          "name",
	"company":       "name",
	"companyname":   "name",
	"vendor":        "name",
	"vendorname":    "name",
	"business":      "name",
	"businessname":  "name",
	"email":         "email",
	"emailaddress":  "email",
	"phone":         "phone",
	"phonenumber":   "phone",
	"telephone":     "phone",
	"tel":           "phone",
	"contactnumber": "phone",
	"contact":       "contact_person",
	"contactperson": "contact_person",
	"contactname":   "contact_person",
	"title":         "contact_title",
	"contacttitle":  "contact_title",
	"type":          "vendor_type",
	"vendortype":    "vendor_type",
	"category":      "vendor_type",
	"status":        "status",
	"address":       "address",
	"street":        "address",
	"streetaddress": "address",
	"city":          "city",
	"state":         "state",
	"province":      "state",
	"zip":           "zip_code",
	"zipcode":       "zip_code",
	"postalcode":    "zip_code",
	"website":       "website",
	"web":           "website",
	"url":           "website",
	"description":   "description",
	"notes":         "description",
	"services":      "description",
	"products":      "description",
	"rating":        "rating",
}

// MapRows converts tabular rows into vendor candidates. The first row is
// treated as a header when at least one column name is recognized;
// otherwise every row is handed to the heuristic extractor as a single line
// of text. The boolean result reports whether a header was recognized.
func MapRows(rows [][]string) ([]vendor.Record, bool) {
	if len(rows) == 0 {
		return nil, false
	}

	fields := headerFields(rows[0])
	if fields == nil {
		out := make([]vendor.Record, 0, len(rows))
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, ", "))
			if line == "" {
				continue
			}
			c := entity.ExtractHeuristic(line)
			c.RawText = line
			out = append(out, vendor.FromClassification(c))
		}
		return out, false
	}

	out := make([]vendor.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec, ok := mapRow(fields, row)
		if ok {
			out = append(out, rec)
		}
	}
	return out, true
}

// headerFields resolves each header cell to a record field name, or nil
// when nothing is recognized.
func headerFields(header []string) []string {
	fields := make([]string, len(header))
	recognized := false
	for i, h := range header {
		if f, ok := columnFields[normalizeHeader(h)]; ok {
			fields[i] = f
			recognized = true
		}
	}
	if !recognized {
		return nil
	}
	return fields
}

func mapRow(fields []string, row []string) (vendor.Record, bool) {
	var rec vendor.Record
	empty := true
	for i, cell := range row {
		if i >= len(fields) || fields[i] == "" {
			continue
		}
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		empty = false
		switch fields[i] {
		case "name":
			rec.Name = cell
		case "email":
			rec.Email = cell
		case "phone":
			rec.Phone = cell
		case "contact_person":
			rec.ContactPerson = cell
		case "contact_title":
			rec.ContactTitle = cell
		case "vendor_type":
			rec.VendorType = cell
		case "status":
			rec.Status = cell
		case "address":
			rec.Address = cell
		case "city":
			rec.City = cell
		case "state":
			rec.State = cell
		case "zip_code":
			rec.ZipCode = cell
		case "website":
			rec.Website = cell
		case "description":
			if rec.Description != "" {
				rec.Description += "; "
			}
			rec.Description += cell
		case "rating":
			if n, err := strconv.Atoi(cell); err == nil && n >= 1 && n <= 5 {
				rec.Rating = &n
			}
		}
	}
	rec.SourceText = strings.TrimSpace(strings.Join(row, ", "))
	return rec, !empty
}

func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
