package patient

import (
	"strings"

	"github.com/BruksfildServices01/consultorio-api/internal/httperr"
)

var ErrInvalidDNI = httperr.Validation("invalid_dni", "DNI inválido (solo números, 7 u 8 dígitos)")

// NormalizeDNI trims the national id and checks it has 7 or 8 digits.
func NormalizeDNI(raw string) (string, error) {
	dni := strings.TrimSpace(raw)
	if len(dni) < 7 || len(dni) > 8 {
		return "", ErrInvalidDNI
	}
	for _, r := range dni {
		if r < '0' || r > '9' {
			return "", ErrInvalidDNI
		}
	}
	return dni, nil
}
