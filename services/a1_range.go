package services

import (
	"fmt"
	"strconv"
	"strings"
)

// A1Range is a parsed "Sheet!A2:F" style range
type A1Range struct {
	Sheet       string
	StartColumn int // zero-based
	StartRow    int // one-based
	EndColumn   int // zero-based, -1 when open-ended
}

// ParseA1Range parses ranges of the form "Sheet!A2:F", "Sheet!B3:D10" or
// "'My Sheet'!A2:F". A missing start row defaults to 1.
func ParseA1Range(s string) (A1Range, error) {
	sheet, cells, ok := strings.Cut(s, "!")
	if !ok || sheet == "" || cells == "" {
		return A1Range{}, fmt.Errorf("range %q: expected Sheet!A1 notation", s)
	}
	sheet = strings.Trim(sheet, "'")

	start, end, _ := strings.Cut(cells, ":")
	startCol, startRow, err := parseCell(start)
	if err != nil {
		return A1Range{}, fmt.Errorf("range %q: %w", s, err)
	}
	if startRow == 0 {
		startRow = 1
	}

	endCol := -1
	if end != "" {
		if endCol, _, err = parseCell(end); err != nil {
			return A1Range{}, fmt.Errorf("range %q: %w", s, err)
		}
	}

	return A1Range{Sheet: sheet, StartColumn: startCol, StartRow: startRow, EndColumn: endCol}, nil
}

// Cell returns the A1 address of the cell at a zero-based column offset and
// zero-based row offset from the start of the range
func (r A1Range) Cell(columnOffset, rowOffset int) string {
	return fmt.Sprintf("%s!%s%d", quoteSheet(r.Sheet), ColumnName(r.StartColumn+columnOffset), r.StartRow+rowOffset)
}

// ColumnName converts a zero-based column index to letters: 0→A, 25→Z, 26→AA
func ColumnName(index int) string {
	name := ""
	for index >= 0 {
		name = string(rune('A'+index%26)) + name
		index = index/26 - 1
	}
	return name
}

func parseCell(cell string) (col int, row int, err error) {
	i := 0
	col = -1
	for i < len(cell) {
		c := cell[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			break
		}
		col = (col+1)*26 + int(c-'A')
		i++
	}
	if col < 0 {
		return 0, 0, fmt.Errorf("cell %q: missing column", cell)
	}
	if i < len(cell) {
		row, err = strconv.Atoi(cell[i:])
		if err != nil || row < 1 {
			return 0, 0, fmt.Errorf("cell %q: invalid row", cell)
		}
	}
	return col, row, nil
}

func quoteSheet(sheet string) string {
	if strings.ContainsAny(sheet, " '-") {
		return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet
}
