package cart

import "strings"

// Kind tells what a line item sells.
type Kind string

const (
	KindEvent   Kind = "event"
	KindProduct Kind = "product"
)

func (k Kind) valid() bool {
	return k == KindEvent || k == KindProduct
}

// LineItem is one line of the cart as stored in the cartItems slot.
// UnitPrice is in whole Baht.
type LineItem struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	Title     string `json:"title"`
	ImageRef  string `json:"imageRef"`
	Option    string `json:"option,omitempty"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// Total is UnitPrice * Quantity.
func (l LineItem) Total() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// LineID composes a line id from the product or event id and the selected
// option, e.g. "concert-12:VIP".
func LineID(refID, option string) string {
	option = strings.TrimSpace(option)
	if refID == "" {
		return ""
	}
	if option == "" {
		return refID
	}
	return refID + ":" + option
}

// Cart is the ordered list of lines of one owner. Version is the slot
// version the lines were read at.
type Cart struct {
	Items   []LineItem `json:"items"`
	Version int64      `json:"version"`
}

// Total sums every line total.
func (c Cart) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Total()
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns a copy of the lines that later mutations cannot touch.
func (c Cart) Snapshot() []LineItem {
	out := make([]LineItem, len(c.Items))
	copy(out, c.Items)
	return out
}
