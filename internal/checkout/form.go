package checkout

import (
	"strings"

	"github.com/wichananm65/ticket-shop-backend/internal/user"
)

// BuyerForm is what the buyer types in before a payment code is issued.
type BuyerForm struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Validate returns a *ValidationError naming every invalid field.
func (f BuyerForm) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(f.Name) == "" {
		fields["name"] = "name is required"
	}
	if strings.TrimSpace(f.Phone) == "" {
		fields["phone"] = "phone is required"
	}
	if !strings.Contains(f.Email, "@") {
		fields["email"] = "email must contain @"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (f BuyerForm) normalized() BuyerForm {
	return BuyerForm{
		Name:  strings.TrimSpace(f.Name),
		Phone: strings.TrimSpace(f.Phone),
		Email: strings.TrimSpace(f.Email),
	}
}

// PrefillForm fills name and email from the logged-in user.
func PrefillForm(sess user.Session) BuyerForm {
	return BuyerForm{Name: sess.Name, Email: sess.Email}
}

// Merge keeps the typed fields and falls back to prefill for empty ones.
func (f BuyerForm) Merge(prefill BuyerForm) BuyerForm {
	if strings.TrimSpace(f.Name) == "" {
		f.Name = prefill.Name
	}
	if strings.TrimSpace(f.Phone) == "" {
		f.Phone = prefill.Phone
	}
	if strings.TrimSpace(f.Email) == "" {
		f.Email = prefill.Email
	}
	return f
}
