package catalog

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

var headerFolder = strings.NewReplacer(
	"Á", "A", "Â", "A", "Ã", "A", "À", "A",
	"É", "E", "Ê", "E",
	"Í", "I",
	"Ó", "O", "Ô", "O", "Õ", "O",
	"Ú", "U",
	"Ç", "C",
	"_", " ",
)

// normalizeHeader makes header matching insensitive to case, accents,
// underscores and repeated spaces.
func normalizeHeader(s string) string {
	s = headerFolder.Replace(strings.ToUpper(strings.TrimSpace(s)))
	return strings.Join(strings.Fields(s), " ")
}

// parseNumber converts a cell to float64. Decimal commas ("1,5") and
// thousands dots ("1.234,5") are accepted, as is a trailing percent sign.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseWhole(raw string) (int, bool) {
	v, ok := parseNumber(raw)
	if !ok || v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
		return 0, false
	}
	return cast.ToInt(v), true
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
