// Package cuil validates the Argentine CUIL/CUIT tax identifier, an
// 11-digit number whose last digit is a mod-11 checksum.
package cuil

import (
	"fmt"
	"regexp"
	"strings"
)

var validPrefixes = []string{"20", "23", "24", "27", "30", "33", "34"}

var multipliers = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

var nonDigits = regexp.MustCompile(`\D`)

// Result always carries both representations so a caller can echo a
// formatted value even when validation fails.
type Result struct {
	Valid      bool   `json:"valid"`
	Normalized string `json:"normalized"`
	Formatted  string `json:"formatted"`
	Error      string `json:"error,omitempty"`
}

// Normalize strips every non-digit character.
func Normalize(cuil string) string {
	return nonDigits.ReplaceAllString(cuil, "")
}

// Format renders an 11-digit CUIL as XX-XXXXXXXX-X. Inputs of any other
// length come back normalized but unformatted.
func Format(cuil string) string {
	normalized := Normalize(cuil)
	if len(normalized) != 11 {
		return normalized
	}
	return fmt.Sprintf("%s-%s-%s", normalized[:2], normalized[2:10], normalized[10:])
}

func checkDigit(digits string) int {
	sum := 0
	for i := 0; i < 10; i++ {
		sum += int(digits[i]-'0') * multipliers[i]
	}
	remainder := sum % 11
	switch remainder {
	case 0:
		return 0
	case 1:
		return 9
	default:
		return 11 - remainder
	}
}

// Validate normalizes and checks a CUIL: length, allowed prefix and
// checksum digit.
func Validate(cuil string) Result {
	normalized := Normalize(cuil)
	formatted := Format(cuil)

	if len(normalized) == 0 {
		return Result{Normalized: normalized, Formatted: formatted, Error: "CUIL es requerido"}
	}

	if len(normalized) != 11 {
		return Result{Normalized: normalized, Formatted: formatted, Error: "CUIL debe tener 11 dígitos"}
	}

	prefix := normalized[:2]
	prefixOK := false
	for _, p := range validPrefixes {
		if prefix == p {
			prefixOK = true
			break
		}
	}
	if !prefixOK {
		return Result{
			Normalized: normalized,
			Formatted:  formatted,
			Error:      fmt.Sprintf("Prefijo inválido: %s. Debe ser %s", prefix, strings.Join(validPrefixes, ", ")),
		}
	}

	if checkDigit(normalized) != int(normalized[10]-'0') {
		return Result{Normalized: normalized, Formatted: formatted, Error: "Dígito verificador inválido"}
	}

	return Result{Valid: true, Normalized: normalized, Formatted: formatted}
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail performs the same lightweight shape check the intake form
// applies.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email es requerido")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("formato de email inválido")
	}
	return nil
}

// ValidateRespondentName requires a trimmed name of at least 3 characters.
func ValidateRespondentName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("nombre es requerido")
	}
	if len(trimmed) < 3 {
		return fmt.Errorf("nombre debe tener al menos 3 caracteres")
	}
	return nil
}
