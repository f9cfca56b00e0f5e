package diagfmt

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Cell owners for one display column of a decoration line. Primary
// beats secondary wherever the two overlap.
const (
	cellBlank uint8 = iota
	cellSecondary
	cellPrimary
)

// markRange is a byte range within a single line, tagged with whether
// it belongs to the primary span.
type markRange struct {
	start, end uint32 // byte offsets into the line, half-open
	secondary  bool
}

// annotateLine expands tabs in line and lays the marks out as display
// cells. The returned cells slice is exactly as long as the printable
// width of the expanded line, except that a mark sitting at or past the
// end of the line may extend it by one caret (zero-length spans always
// produce one marker).
func annotateLine(line string, marks []markRange, tabWidth int) (string, []uint8) {
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}

	// colAt[i] is the display column where the byte at offset i starts.
	// Bytes in the middle of a grapheme cluster share the cluster's
	// starting column. colAt[len(line)] is the total printable width.
	colAt := make([]int, len(line)+1)
	var expanded strings.Builder
	col := 0

	rest := line
	byteOff := 0
	state := -1
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)

		for i := range len(cluster) {
			colAt[byteOff+i] = col
		}

		if cluster == "\t" {
			// Expand to the next tab stop, at least one cell.
			expanded.WriteByte(' ')
			col++
			for col%tabWidth != 0 {
				expanded.WriteByte(' ')
				col++
			}
		} else {
			expanded.WriteString(cluster)
			col += runewidth.StringWidth(cluster)
		}
		byteOff += len(cluster)
	}
	colAt[len(line)] = col

	cells := make([]uint8, col)

	// Secondaries first so the primary wins on overlap.
	for _, pass := range []bool{true, false} {
		for _, m := range marks {
			if m.secondary != pass {
				continue
			}
			cells = fillMark(cells, colAt, m)
		}
	}

	return expanded.String(), cells
}

func fillMark(cells []uint8, colAt []int, m markRange) []uint8 {
	start := min(int(m.start), len(colAt)-1)
	end := min(int(m.end), len(colAt)-1)

	c0 := colAt[start]
	c1 := colAt[end]
	// Zero-length spans (and spans over zero-width clusters) still get
	// exactly one marker so a point error never renders blank.
	if c1 <= c0 {
		c1 = c0 + 1
	}
	for len(cells) < c1 {
		cells = append(cells, cellBlank)
	}

	owner := cellPrimary
	if m.secondary {
		owner = cellSecondary
	}
	for i := c0; i < c1; i++ {
		if cells[i] < owner {
			cells[i] = owner
		}
	}
	return cells
}

// decorationString renders cells as plain markers: '^' under the
// primary range, '-' under secondaries, spaces elsewhere. Trailing
// blanks are trimmed.
func decorationString(cells []uint8) string {
	var b strings.Builder
	for _, c := range cells {
		switch c {
		case cellPrimary:
			b.WriteByte('^')
		case cellSecondary:
			b.WriteByte('-')
		default:
			b.WriteByte(' ')
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// displayWidth measures line the same way annotateLine does, tabs
// included.
func displayWidth(line string, tabWidth int) int {
	_, cells := annotateLine(line, nil, tabWidth)
	return len(cells)
}
