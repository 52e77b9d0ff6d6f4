// Package email renders review notifications. Delivery lives in the ses and
// noop subpackages.
package email

import (
	"fmt"
	"html"
	"strings"

	"afipimport/internal/port"
)

// ReviewSubject returns the subject line of a review notification.
func ReviewSubject(n port.ReviewNotice) string {
	return fmt.Sprintf("%s: %d imported invoices need review", n.CompanyName, n.Flagged)
}

// ReviewText returns the plain-text body of a review notification.
func ReviewText(n port.ReviewNotice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The AFIP import for %s finished with %d of %d rows left in draft.\n\n",
		n.CompanyName, n.Flagged, n.Rows)
	for _, item := range n.Items {
		fmt.Fprintf(&b, "- line %d, %s %s (%s): %s\n",
			item.Line, item.DocType, item.Reference, item.IssuerName, strings.Join(item.Differences, "; "))
	}
	fmt.Fprintf(&b, "\nValidated: %d. Already imported: %d.\n", n.Validated, n.Skipped)
	return b.String()
}

// ReviewHTML returns the HTML body of a review notification.
func ReviewHTML(n port.ReviewNotice) string {
	var rows strings.Builder
	for _, item := range n.Items {
		fmt.Fprintf(&rows, "    <tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			item.Line,
			html.EscapeString(item.DocType),
			html.EscapeString(item.Reference),
			html.EscapeString(item.IssuerName),
			html.EscapeString(strings.Join(item.Differences, "; ")))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 700px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Invoices to review</h2>
  <p>The AFIP import for %s finished with %d of %d rows left in draft.</p>
  <table style="border-collapse: collapse; width: 100%%;" cellpadding="6" border="1">
    <tr><th>Line</th><th>Type</th><th>Reference</th><th>Issuer</th><th>Differences</th></tr>
%s  </table>
  <p style="color: #999; font-size: 12px;">Validated: %d. Already imported: %d.</p>
</body>
</html>`, html.EscapeString(n.CompanyName), n.Flagged, n.Rows, rows.String(), n.Validated, n.Skipped)
}
