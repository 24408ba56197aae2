package promptpay

import "fmt"

// crcPolynomial is the CCITT generator polynomial x^16 + x^12 + x^5 + 1.
const crcPolynomial = 0x1021

// CRC16 computes CRC-16/CCITT-FALSE over data: polynomial 0x1021, initial
// register 0xFFFF, no input or output reflection and no final XOR.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPolynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Checksum renders the CRC16 of s as four uppercase hex digits.
func Checksum(s string) string {
	return fmt.Sprintf("%04X", CRC16([]byte(s)))
}
