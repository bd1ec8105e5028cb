package exporter

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCurrency renders a monetary amount for the active UI language:
// Portuguese gets BRL, everything else USD.
func FormatCurrency(amount float64, lang language.Tag) string {
	unit := currency.USD
	printer := message.NewPrinter(language.English)
	if base, _ := lang.Base(); base.String() == "pt" {
		unit = currency.BRL
		printer = message.NewPrinter(language.BrazilianPortuguese)
	}
	return printer.Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}
