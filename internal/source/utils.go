package source

import (
	"path/filepath"
	"slices"
	"unicode/utf8"
)

// normalizeCRLF replaces every \r\n with \n, leaving lone \r untouched.
// Returns the new slice and whether at least one replacement happened.
func normalizeCRLF(content []byte) ([]byte, bool) {
	// Fast path: nothing to do when there is no \r at all.
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

// buildLineIndex records the byte offset of every \n in content.
// The offsets are strictly increasing; the index is built once at load
// and never mutated afterwards.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content))
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

// toLineCol converts a byte offset into a 1-based line/column pair.
// The column is counted in codepoints from the start of the line.
func toLineCol(content []byte, lineIdx []uint32, off uint32) LineCol {
	// Binary search: largest lineIdx[i] <= off-1, i.e. the newline
	// terminating the previous line.
	lo, hi := 0, len(lineIdx)-1
	for lo <= hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	line := hi // 0-based index of the newline before off

	var startOff uint32
	if line < 0 {
		startOff = 0
	} else {
		startOff = lineIdx[line] + 1
	}

	col := uint32(utf8.RuneCount(content[startOff:off])) + 1
	return LineCol{Line: uint32(line + 2), Col: col}
}

func normalizePath(p string) string {
	// One canonical form for cross-platform diffs.
	return filepath.ToSlash(filepath.Clean(p))
}
