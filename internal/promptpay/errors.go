package promptpay

import "errors"

var (
	ErrInvalidMerchantIdentifier = errors.New("invalid merchant identifier")
	ErrInvalidAmount             = errors.New("invalid amount")
	ErrMalformedPayload          = errors.New("malformed payload")
	ErrChecksumMismatch          = errors.New("payload checksum mismatch")
)
