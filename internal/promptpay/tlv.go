package promptpay

import (
	"fmt"
	"strconv"
	"strings"
)

// maxValueLength is the largest length a two digit LENGTH subfield can declare.
const maxValueLength = 99

// Field is a single tag-length-value entry of a payload.
type Field struct {
	Tag   string
	Value string
}

// Len is the byte length written into the LENGTH subfield.
func (f Field) Len() int {
	return len(f.Value)
}

func (f Field) encode(b *strings.Builder) error {
	if len(f.Tag) != 2 || !isDigits(f.Tag) {
		return fmt.Errorf("%w: tag %q is not two digits", ErrMalformedPayload, f.Tag)
	}
	if len(f.Value) > maxValueLength {
		return fmt.Errorf("%w: tag %s value is %d bytes", ErrMalformedPayload, f.Tag, len(f.Value))
	}
	b.WriteString(f.Tag)
	// always two digits, "09" not "9"
	fmt.Fprintf(b, "%02d", len(f.Value))
	b.WriteString(f.Value)
	return nil
}

func encodeFields(fields ...Field) (string, error) {
	var b strings.Builder
	for _, f := range fields {
		if err := f.encode(&b); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// Parse walks s as a sequence of TLV fields. It fails when a header is
// truncated, a length is not two ASCII digits, a value runs past the end of
// the input, or bytes are left over.
func Parse(s string) ([]Field, error) {
	var fields []Field
	for i := 0; i < len(s); {
		if len(s)-i < 4 {
			return nil, fmt.Errorf("%w: truncated field header at offset %d", ErrMalformedPayload, i)
		}
		tag, rawLen := s[i:i+2], s[i+2:i+4]
		if !isDigits(tag) || !isDigits(rawLen) {
			return nil, fmt.Errorf("%w: non-numeric tag or length %q at offset %d", ErrMalformedPayload, s[i:i+4], i)
		}
		n, _ := strconv.Atoi(rawLen)
		start := i + 4
		if start+n > len(s) {
			return nil, fmt.Errorf("%w: tag %s declares %d bytes, %d left", ErrMalformedPayload, tag, n, len(s)-start)
		}
		fields = append(fields, Field{Tag: tag, Value: s[start : start+n]})
		i = start + n
	}
	return fields, nil
}

// Lookup returns the value of the first field with the given tag.
func Lookup(fields []Field, tag string) (string, bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
