package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const currencySymbol = "Ksh"

var priceLocale = language.MustParse("en-KE")

// FormatPrice renders an amount as "Ksh 5,000": grouped thousands, at most two fraction
// digits, none forced.
func FormatPrice(d decimal.Decimal) string {
	f := d.Round(2).InexactFloat64()
	p := message.NewPrinter(priceLocale)
	return p.Sprintf("%s %v", currencySymbol, number.Decimal(f, number.MaxFractionDigits(2)))
}

// RenderMessage builds the order summary sent to the shop's chat.
func RenderMessage(storeName string, form FormData, q Quote) string {
	var b strings.Builder

	b.WriteString("🛍️ *NEW ORDER - " + storeName + "*\n\n")

	b.WriteString("*Customer Details:*\n")
	b.WriteString("👤 Name: " + form.Name + "\n")
	b.WriteString("📱 Phone: " + form.Phone + "\n")
	b.WriteString("📍 Location: " + form.Location + "\n\n")

	b.WriteString("*Order Items:*\n")
	for i, l := range q.Lines {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• " + l.Name + " x" + strconv.Itoa(l.Quantity) + " - " + FormatPrice(l.LineTotal))
	}
	b.WriteString("\n\n")

	b.WriteString("*Summary:*\n")
	b.WriteString("Subtotal: " + FormatPrice(q.Subtotal) + "\n")
	if q.DeliveryFee.IsZero() {
		b.WriteString("Delivery: FREE\n")
	} else {
		b.WriteString("Delivery: " + FormatPrice(q.DeliveryFee) + "\n")
	}
	b.WriteString("*TOTAL: " + FormatPrice(q.Total) + "*\n\n")

	b.WriteString("Thank you for shopping with us! 🙏\n")
	return b.String()
}
