package exporter

import (
	"strconv"
	"strings"
)

// formatFloat formats a value with exactly 2 decimal places, so 13.4 is written as 13.40
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

const maxSheetName = 31

// sheetName makes a sector name usable as a worksheet name
func sheetName(sector string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		return r
	}, strings.Trim(sector, "'"))

	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}
