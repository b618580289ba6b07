package render

import (
	"fmt"
	"strconv"
	"strings"

	"matrix-rain/internal/rain"
)

const (
	ESC   = "\x1b"
	CSI   = ESC + "["
	Reset = CSI + "0m"
)

// MoveTo positions the cursor at row, col (1-based).
func MoveTo(row, col int) string {
	return fmt.Sprintf("%s%d;%dH", CSI, row, col)
}

// EnterScreen switches to the alternate buffer, hides the cursor and
// clears it.
func EnterScreen() string {
	return CSI + "?1049h" + CSI + "?25l" + CSI + "2J"
}

// LeaveScreen restores the cursor and the primary buffer.
func LeaveScreen() string {
	return Reset + CSI + "?25h" + CSI + "?1049l"
}

// WriteCellSGR writes a single cell's full SGR + character to the builder.
// Uses combined SGR to avoid state leakage between cells.
func WriteCellSGR(sb *strings.Builder, c Cell) {
	sb.WriteString("\x1b[0;38;2;")
	writeRGB(sb, c.Fg)
	sb.WriteString(";48;2;")
	writeRGB(sb, c.Bg)
	sb.WriteByte('m')
	sb.WriteRune(c.Ch)
}

func writeRGB(sb *strings.Builder, c rain.RGB) {
	sb.WriteString(strconv.Itoa(int(c.R)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.G)))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(int(c.B)))
}
