package utils

import "strings"

// NormalizePlate brings a plate to the stored lookup form: no surrounding
// whitespace, no inner spaces or dashes, upper case.
func NormalizePlate(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ToUpper(normalized)
	return normalized
}

// EscapeLike escapes the LIKE wildcards in s so it matches literally inside a
// %...% pattern.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
