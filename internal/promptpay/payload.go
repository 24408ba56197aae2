// Package promptpay builds Thai PromptPay merchant-presented QR payloads, the
// EMVCo TLV text format scanned by Thai banking apps.
package promptpay

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	TagPayloadFormat     = "00"
	TagPointOfInitiation = "01"
	TagMerchantAccount   = "29"
	TagCurrency          = "53"
	TagAmount            = "54"
	TagCountry           = "58"
	TagCRC               = "63"

	subTagGUID  = "00"
	subTagPhone = "01"
	subTagTaxID = "02"
)

const (
	// GUID identifies the PromptPay scheme inside merchant account information.
	GUID = "A000000677010111"

	payloadFormatVersion = "01"
	initiationStatic     = "11"
	initiationDynamic    = "12"
	currencyTHB          = "764"
	countryTH            = "TH"
	countryCallingCode   = "66"

	phoneLength = 10
	taxIDLength = 13

	// maxAmountLength is the EMVCo limit for the transaction amount value.
	maxAmountLength = 13
	crcHeader       = TagCRC + "04"
)

// Encode builds a dynamic payload charging amount Baht to merchantID.
func Encode(merchantID string, amount decimal.Decimal) (string, error) {
	formatted, err := FormatAmount(amount)
	if err != nil {
		return "", err
	}
	return build(merchantID, formatted)
}

// EncodeStatic builds a payload without an amount; the payer types it in.
func EncodeStatic(merchantID string) (string, error) {
	return build(merchantID, "")
}

// AmountFromFloat converts f, rejecting NaN and infinities.
func AmountFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, fmt.Errorf("%w: %v is not finite", ErrInvalidAmount, f)
	}
	return decimal.NewFromFloat(f), nil
}

// FormatAmount renders amount the way tag 54 carries it: two fractional
// digits, no grouping, a single leading zero below one.
func FormatAmount(amount decimal.Decimal) (string, error) {
	if amount.IsNegative() {
		return "", fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return "", fmt.Errorf("%w: %s has more than two fractional digits", ErrInvalidAmount, amount)
	}
	s := amount.StringFixed(2)
	if len(s) > maxAmountLength {
		return "", fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidAmount, s, maxAmountLength)
	}
	return s, nil
}

// NormalizeMerchantID strips separators and classifies the identifier. A
// 10 digit local phone number 0XXXXXXXXX becomes 0066XXXXXXXXX; a 13 digit
// tax id is kept as is.
func NormalizeMerchantID(raw string) (subTag, value string, err error) {
	id := strings.NewReplacer(" ", "", "-", "").Replace(raw)
	if !isDigits(id) {
		return "", "", fmt.Errorf("%w: %q is not numeric", ErrInvalidMerchantIdentifier, raw)
	}
	switch {
	case len(id) == phoneLength && id[0] == '0':
		return subTagPhone, "00" + countryCallingCode + id[1:], nil
	case len(id) == taxIDLength:
		return subTagTaxID, id, nil
	default:
		return "", "", fmt.Errorf("%w: %q is neither a local phone number nor a tax id", ErrInvalidMerchantIdentifier, raw)
	}
}

func build(merchantID, amount string) (string, error) {
	subTag, id, err := NormalizeMerchantID(merchantID)
	if err != nil {
		return "", err
	}
	account, err := encodeFields(
		Field{Tag: subTagGUID, Value: GUID},
		Field{Tag: subTag, Value: id},
	)
	if err != nil {
		return "", err
	}

	initiation := initiationStatic
	if amount != "" {
		initiation = initiationDynamic
	}
	fields := []Field{
		{Tag: TagPayloadFormat, Value: payloadFormatVersion},
		{Tag: TagPointOfInitiation, Value: initiation},
		{Tag: TagMerchantAccount, Value: account},
		{Tag: TagCurrency, Value: currencyTHB},
	}
	if amount != "" {
		fields = append(fields, Field{Tag: TagAmount, Value: amount})
	}
	fields = append(fields, Field{Tag: TagCountry, Value: countryTH})

	body, err := encodeFields(fields...)
	if err != nil {
		return "", err
	}
	// the checksum covers its own tag and length
	body += crcHeader
	return body + Checksum(body), nil
}

// Verify parses payload and checks that it ends with a CRC field whose
// value matches the checksum of everything before it.
func Verify(payload string) error {
	fields, err := Parse(payload)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty payload", ErrMalformedPayload)
	}
	last := fields[len(fields)-1]
	if last.Tag != TagCRC || last.Len() != 4 {
		return fmt.Errorf("%w: payload does not end with a CRC field", ErrMalformedPayload)
	}
	body := payload[:len(payload)-4]
	if want := Checksum(body); want != last.Value {
		return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, last.Value, want)
	}
	return nil
}
