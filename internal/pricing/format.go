package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var twdPrinter = message.NewPrinter(language.TraditionalChinese)

// FormatCurrency renders a whole NT$ amount, e.g. "NT$ 23,500"
func FormatCurrency(amount int64) string {
	return twdPrinter.Sprintf("NT$ %d", amount)
}
