// Package canonical renders an invoice's immutable fields into one
// deterministic byte sequence and fingerprints it.
//
// The encoding is injective: every variable-length value is length-prefixed
// (netstring style), the field order is fixed, and the item count is explicit,
// so no two logically different invoices can share a canonical form. The
// output is transient; only the digest is ever persisted.
package canonical

import (
	"bytes"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"quoteguard/internal/invoice"
)

// version tags the encoding scheme. Bump only with a migration plan: changing
// it invalidates every stored digest.
const version = "qgc1"

// Encode renders the record's immutable fields in fixed order:
// owner id, invoice number, issue date, due date, currency, subtotal, tax,
// total, line items. Dates render as ISO-8601 calendar dates; monetary values
// render with exactly two fraction digits, round-half-up. Line items are
// sorted by product name (byte-wise); items with equal names keep their input
// order.
func Encode(r *invoice.Record) []byte {
	var buf bytes.Buffer
	buf.WriteString(version)

	writeField(&buf, r.OwnerID.String())
	writeField(&buf, r.Number)
	writeField(&buf, r.IssueDate.Format("2006-01-02"))
	writeField(&buf, r.DueDate.Format("2006-01-02"))
	writeField(&buf, r.Currency)
	writeField(&buf, Money(r.Subtotal))
	writeField(&buf, Money(r.Tax))
	writeField(&buf, Money(r.Total))

	items := append([]invoice.LineItem(nil), r.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Product < items[j].Product
	})

	buf.WriteString(strconv.Itoa(len(items)))
	buf.WriteByte('#')
	for _, item := range items {
		writeField(&buf, item.Product)
		writeField(&buf, strconv.Itoa(item.Quantity))
		writeField(&buf, Money(item.UnitPrice))
	}
	return buf.Bytes()
}

// writeField emits one length-prefixed value: "<len>:<bytes>;". The prefix
// makes the encoding collision-free even when values contain the delimiter
// characters themselves.
func writeField(buf *bytes.Buffer, value string) {
	buf.WriteString(strconv.Itoa(len(value)))
	buf.WriteByte(':')
	buf.WriteString(value)
	buf.WriteByte(';')
}

// Money renders a monetary value with exactly two fraction digits. Amounts
// are validated non-negative before they reach canonical form, where
// decimal's half-away-from-zero rounding coincides with round-half-up.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
