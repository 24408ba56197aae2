package checkout

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var bahtPrinter = message.NewPrinter(language.English)

// FormatBaht renders a whole-Baht amount for display, e.g. "THB 3,950.00".
func FormatBaht(amount int64) string {
	return bahtPrinter.Sprint(currency.ISO(currency.THB.Amount(amount)))
}

// View is the JSON shape returned for an attempt.
type View struct {
	Status
	DisplayAmount string `json:"displayAmount,omitempty"`
	QRURL         string `json:"qrUrl,omitempty"`
}

func newView(s Status, qrPath string) View {
	v := View{Status: s}
	if s.Quote != nil {
		v.DisplayAmount = FormatBaht(s.Quote.Amount)
		v.QRURL = s.Quote.Image.URL
		if s.Quote.Image.Inline() {
			v.QRURL = qrPath
		}
	}
	return v
}
