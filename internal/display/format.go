package display

import "fmt"

// Frame control bytes understood by the display boards
const (
	lf  = 0x0A // clears the previous message
	stx = 0x02
	etx = 0x03
)

// DigitsPerDisplay is the width of each of the four displays
const DigitsPerDisplay = 4

// FormatValue renders a value in exactly four characters. Non-negative values
// are zero padded and capped at 9999; negative values are right aligned and
// floored at -999.
func FormatValue(v int) string {
	switch {
	case v < 0:
		return fmt.Sprintf("%4d", max(v, -999))
	case v >= 10000:
		return "9999"
	default:
		return fmt.Sprintf("%04d", v)
	}
}

// Frame wraps a 16 character message for the wire
func Frame(message string) []byte {
	data := make([]byte, 0, len(message)+3)
	data = append(data, lf, stx)
	data = append(data, message...)
	return append(data, etx)
}

// Message lays out three player balances and the pot, four characters each
func Message(p1, p2, p3, pot int) string {
	return FormatValue(p1) + FormatValue(p2) + FormatValue(p3) + FormatValue(pot)
}

// blankMessage switches every digit off
const blankMessage = "                "
