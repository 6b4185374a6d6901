package extract

import "strings"

// Field contract shared by every AI extraction call. The service must
// return these keys and no others; unknown keys are discarded on parse.
const fieldContract = `{
  "name": "company or vendor name (string, required)",
  "email": "contact email (string or empty)",
  "phone": "contact phone number(s) (string or empty)",
  "contact_person": "primary contact full name (string or empty)",
  "contact_title": "contact person's role/title (string or empty)",
  "vendor_type": "one of: service, supplier, contractor, consultant (string or empty)",
  "status": "active or inactive (string or empty)",
  "address": "street address (string or empty)",
  "city": "city (string or empty)",
  "state": "two-letter state code (string or empty)",
  "zip_code": "ZIP code (string or empty)",
  "website": "website URL (string or empty)",
  "description": "what this vendor provides (string or empty)",
  "rating": "integer 1-5 or null"
}`

const blockPrompt = `You are extracting vendor contact data from a fragment of a business document.

The fragment describes AT MOST one vendor. Return a single JSON object with exactly these fields:

` + fieldContract + `

Rules:
- Use empty string "" for any field not present in the text; never invent data.
- "name" is the business name, not a person's name. If only a person is named, leave "name" empty and put the person in "contact_person".
- Normalize nothing: copy phone numbers and addresses as written.
- Respond with ONLY the JSON object, no other text.`

const batchPrompt = `You are extracting vendor contact data from raw business document text.

The text may describe any number of vendors. Return a JSON array where each element is an object with exactly these fields:

` + fieldContract + `

Rules:
- One array element per distinct vendor; do not merge different companies.
- Use empty string "" for missing fields; never invent data.
- Return an empty array [] if no vendors are present.
- Respond with ONLY the JSON array, no other text.`

const visionPrompt = `This image is a scanned page of a business document containing vendor contact information.

If you can identify discrete vendor entries, return a JSON array where each element is an object with exactly these fields:

` + fieldContract + `

If the page is not clearly structured enough to extract vendors directly, instead transcribe ALL visible text verbatim as plain text.

Prefer the JSON array. Never mix both forms in one response.`

// buildPrompt appends caller instructions and the document text to a base
// prompt.
func buildPrompt(base, instructions, text string) string {
	var sb strings.Builder
	sb.WriteString(base)
	if strings.TrimSpace(instructions) != "" {
		sb.WriteString("\n\nAdditional caller context: ")
		sb.WriteString(strings.TrimSpace(instructions))
	}
	sb.WriteString("\n\n---\n")
	sb.WriteString(text)
	return sb.String()
}
