package esocial

import "strings"

// NormalizeDigits strips every non-digit character from input. An empty
// result is an error only for mandatory fields.
func NormalizeDigits(field, input string, mandatory bool) (string, error) {
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" && mandatory {
		return "", &FormatError{Field: field, Input: input}
	}
	return out, nil
}

func digitsOnly(input string) string {
	out, _ := NormalizeDigits("", input, false)
	return out
}
