package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatHex renders w as a zero-padded four-digit hex word, e.g. "002A".
func FormatHex(w Word) string {
	return fmt.Sprintf("%04X", uint16(w))
}

// FormatDecimal renders w in base 10.
func FormatDecimal(w Word) string {
	return strconv.FormatUint(uint64(w), 10)
}

// FormatBinary renders w as sixteen bits, grouped into nibbles separated by
// a single space, e.g. "0101 0000 0000 0011".
func FormatBinary(w Word) string {
	bits := fmt.Sprintf("%016b", uint16(w))
	var b strings.Builder
	for i, r := range bits {
		if i != 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
