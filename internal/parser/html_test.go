package parser

import (
	"context"
	"strings"
	"testing"
)

func TestHTMLParser_ExtractsContentBlocks(t *testing.T) {
	src := `<html><head>
<style>p { color: red }</style>
<script>var tracking = true;</script>
</head><body>
<nav><a href="/">home</a></nav>
<h2>Acme Supply Co</h2>
<p>Phone: 555-867-5309<br>Email: sales@acme.com</p>
<table>
<tr><td>Bravo Industrial LLC</td><td>555-123-4567</td></tr>
</table>
<ul><li>Charlie Services Inc, 789 Pine Rd</li></ul>
</body></html>`

	doc, err := (&HTMLParser{}).Extract(context.Background(), strings.NewReader(src), "vendors.html")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"Acme Supply Co",
		"Phone: 555-867-5309",
		"Bravo Industrial LLC 555-123-4567",
		"Charlie Services Inc, 789 Pine Rd",
	} {
		if !strings.Contains(doc.FullText, want) {
			t.Errorf("FullText missing %q:\n%s", want, doc.FullText)
		}
	}
	for _, reject := range []string{"color: red", "tracking", "home"} {
		if strings.Contains(doc.FullText, reject) {
			t.Errorf("non-content %q survived:\n%s", reject, doc.FullText)
		}
	}
}

func TestHTMLParser_FragmentWithoutBody(t *testing.T) {
	src := `<p>Acme Supply Co 555-867-5309</p>`

	doc, err := (&HTMLParser{}).Extract(context.Background(), strings.NewReader(src), "vendors.htm")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.FullText, "Acme Supply Co 555-867-5309") {
		t.Errorf("FullText = %q", doc.FullText)
	}
}
