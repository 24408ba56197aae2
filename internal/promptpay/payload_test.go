package promptpay

import (
	"math"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Golden(t *testing.T) {
	tests := []struct {
		name       string
		merchantID string
		amount     decimal.Decimal
		want       string
	}{
		{
			name:       "phone with amount",
			merchantID: "0837951132",
			amount:     decimal.RequireFromString("3950.00"),
			want:       "00020101021229370016A00000067701011101130066837951132530376454073950.005802TH63040DDC",
		},
		{
			name:       "tax id below one baht",
			merchantID: "1234567890123",
			amount:     decimal.RequireFromString("0.5"),
			want:       "00020101021229370016A00000067701011102131234567890123530376454040.505802TH63049C77",
		},
		{
			name:       "largest representable amount length",
			merchantID: "081-234-5678",
			amount:     decimal.RequireFromString("1234567890.12"),
			want:       "00020101021229370016A00000067701011101130066812345678530376454131234567890.125802TH6304D800",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.merchantID, tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeStatic_Golden(t *testing.T) {
	got, err := EncodeStatic("0837951132")
	require.NoError(t, err)
	assert.Equal(t, "00020101021129370016A0000006770101110113006683795113253037645802TH6304FB3D", got)

	fields, err := Parse(got)
	require.NoError(t, err)
	_, hasAmount := Lookup(fields, TagAmount)
	assert.False(t, hasAmount)
}

func TestEncode_AmountField(t *testing.T) {
	payload, err := Encode("0837951132", decimal.NewFromInt(3950))
	require.NoError(t, err)

	assert.Contains(t, payload, "54073950.00")

	fields, err := Parse(payload)
	require.NoError(t, err)
	amount, ok := Lookup(fields, TagAmount)
	require.True(t, ok)
	assert.Equal(t, "3950.00", amount)
	initiation, _ := Lookup(fields, TagPointOfInitiation)
	assert.Equal(t, initiationDynamic, initiation)
}

func TestEncode_Deterministic(t *testing.T) {
	for i := 0; i < 20; i++ {
		id := "08" + gofakeit.DigitN(8)
		amount := decimal.NewFromInt(int64(gofakeit.IntRange(0, 1_000_000)))

		first, err := Encode(id, amount)
		require.NoError(t, err)
		second, err := Encode(id, amount)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestEncode_LengthFieldsAndChecksum(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := "0" + gofakeit.DigitN(9)
		if i%2 == 1 {
			id = gofakeit.DigitN(13)
		}
		amount := decimal.New(int64(gofakeit.IntRange(0, 99_999_999)), -2)

		payload, err := Encode(id, amount)
		require.NoError(t, err, "id=%s amount=%s", id, amount)

		assertWellFormed(t, payload)
		require.NoError(t, Verify(payload))

		body, digits := payload[:len(payload)-4], payload[len(payload)-4:]
		assert.True(t, strings.HasSuffix(body, "6304"))
		assert.Equal(t, digits, Checksum(body))
	}
}

// assertWellFormed re-walks every field, including the nested merchant
// account, checking declared lengths against the actual values.
func assertWellFormed(t *testing.T, payload string) {
	t.Helper()

	fields, err := Parse(payload)
	require.NoError(t, err)

	consumed := 0
	for _, f := range fields {
		declared := payload[consumed+2 : consumed+4]
		assert.Len(t, declared, 2)
		assert.Equal(t, f.Len(), atoi(t, declared), "tag %s", f.Tag)
		consumed += 4 + f.Len()
	}
	assert.Equal(t, len(payload), consumed, "leftover bytes")

	account, ok := Lookup(fields, TagMerchantAccount)
	require.True(t, ok)
	nested, err := Parse(account)
	require.NoError(t, err)
	require.Len(t, nested, 2)
	assert.Equal(t, GUID, nested[0].Value)
	assert.Len(t, nested[1].Value, 13)

	wantOrder := []string{TagPayloadFormat, TagPointOfInitiation, TagMerchantAccount, TagCurrency, TagAmount, TagCountry, TagCRC}
	gotOrder := make([]string, 0, len(fields))
	for _, f := range fields {
		gotOrder = append(gotOrder, f.Tag)
	}
	assert.Equal(t, wantOrder, gotOrder)
}

func atoi(t *testing.T, s string) int {
	t.Helper()
	n := 0
	for _, c := range s {
		require.True(t, c >= '0' && c <= '9', "non-digit length %q", s)
		n = n*10 + int(c-'0')
	}
	return n
}

func TestEncode_InvalidMerchantIdentifier(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "empty", id: ""},
		{name: "letters", id: "08ABCDEFGH"},
		{name: "phone without leading zero", id: "8379511321"},
		{name: "too short", id: "083795113"},
		{name: "international prefix", id: "+66837951132"},
		{name: "fourteen digits", id: "12345678901234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Encode(tt.id, decimal.NewFromInt(100))
			require.ErrorIs(t, err, ErrInvalidMerchantIdentifier)
			assert.Empty(t, payload)
		})
	}
}

func TestEncode_InvalidAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
	}{
		{name: "negative", amount: decimal.NewFromInt(-1)},
		{name: "three fractional digits", amount: decimal.RequireFromString("10.005")},
		{name: "too large", amount: decimal.RequireFromString("10000000000")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := Encode("0837951132", tt.amount)
			require.ErrorIs(t, err, ErrInvalidAmount)
			assert.Empty(t, payload)
		})
	}
}

func TestAmountFromFloat(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := AmountFromFloat(f)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}

	d, err := AmountFromFloat(3950.00)
	require.NoError(t, err)
	s, err := FormatAmount(d)
	require.NoError(t, err)
	assert.Equal(t, "3950.00", s)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "0.00"},
		{in: "0.5", want: "0.50"},
		{in: "7", want: "7.00"},
		{in: "1800.1", want: "1800.10"},
		{in: "9999999999.99", want: "9999999999.99"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FormatAmount(decimal.RequireFromString(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeMerchantID(t *testing.T) {
	sub, value, err := NormalizeMerchantID("083-795 1132")
	require.NoError(t, err)
	assert.Equal(t, subTagPhone, sub)
	assert.Equal(t, "0066837951132", value)

	sub, value, err = NormalizeMerchantID("1-2345-67890-12-3")
	require.NoError(t, err)
	assert.Equal(t, subTagTaxID, sub)
	assert.Equal(t, "1234567890123", value)
}
