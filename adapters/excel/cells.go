package excel

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// restoreNumbers replaces display-formatted numeric text ("1,234.50", "12%",
// "$3.00") with the stored value. Date-styled cells keep their formatted
// text so they can still be parsed as dates; boolean cells keep TRUE/FALSE.
func restoreNumbers(f *excelize.File, sheet string, formatted, raw [][]string) {
	dateStyles := make(map[int]bool)
	for i, row := range formatted {
		if i >= len(raw) {
			return
		}
		for j, text := range row {
			if j >= len(raw[i]) || raw[i][j] == text {
				continue
			}
			value := raw[i][j]
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			if typ, err := f.GetCellType(sheet, cell); err != nil || typ == excelize.CellTypeBool {
				continue
			}
			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				continue
			}
			isDate, seen := dateStyles[styleID]
			if !seen {
				isDate = styleIsDate(f, styleID)
				dateStyles[styleID] = isDate
			}
			if !isDate {
				formatted[i][j] = value
			}
		}
	}
}

func styleIsDate(f *excelize.File, styleID int) bool {
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return customFormatIsDate(*style.CustomNumFmt)
	}
	return builtinFormatIsDate(style.NumFmt)
}

func builtinFormatIsDate(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58,
		id >= 71 && id <= 81:
		return true
	}
	return false
}

// customFormatIsDate looks for date or time tokens outside quoted literals,
// bracketed sections and escaped characters.
func customFormatIsDate(format string) bool {
	inQuote, inBracket, escaped := false, false, false
	for _, r := range strings.ToLower(format) {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		case strings.ContainsRune("ymdhs", r):
			return true
		}
	}
	return false
}
