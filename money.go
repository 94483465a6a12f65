package airlinesim

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders an amount as dollars with thousands separators, e.g. $1,250,000.00.
func FormatMoney(v float64) string {
	return moneyPrinter.Sprintf("$%.2f", v)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(v int64) string {
	return moneyPrinter.Sprintf("%d", v)
}
