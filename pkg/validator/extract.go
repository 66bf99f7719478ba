package validator

import "strings"

// ExtractCodes pulls candidate codes out of free text: every run of at least
// two ASCII digits, in order, without duplicates. Runs of the wrong length are
// kept so the validator can report them as INVALID_FORMAT.
//
// Dotted runs are joined only when they read like tariff notation: a
// four-digit heading followed by two-digit groups ("8471.30", "8471.30.00").
// Other dotted numbers such as "2.5" or "12.99" are quantities and dropped.
func ExtractCodes(text string) []string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '.'
	})
	for _, f := range fields {
		code, ok := joinDotted(strings.Trim(f, "."))
		if !ok || len(code) < 2 || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

func joinDotted(run string) (string, bool) {
	if !strings.Contains(run, ".") {
		return run, true
	}
	parts := strings.Split(run, ".")
	if len(parts[0]) != 4 {
		return "", false
	}
	for _, p := range parts[1:] {
		if len(p) != 2 {
			return "", false
		}
	}
	return strings.Join(parts, ""), true
}
