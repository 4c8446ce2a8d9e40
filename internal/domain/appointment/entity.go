package appointment

import (
	"github.com/BruksfildServices01/consultorio-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Apply moves ap through ev, leaving it untouched on error.
func Apply(ap *models.Appointment, ev Event) error {
	next, err := Next(Status(ap.Status), ev)
	if err != nil {
		return err
	}
	ap.Status = string(next)
	if ev == EventCollectPayment {
		ap.Paid = true
	}
	return nil
}

// PaymentMethodFor forces the insurer method on zero amounts. Paid
// amounts must be cash or transfer.
func PaymentMethodFor(amount float64, requested string) (string, error) {
	if amount < 0 {
		return "", ErrInvalidAmount
	}
	if amount == 0 {
		return models.PaymentInsurer, nil
	}
	switch requested {
	case models.PaymentCash, models.PaymentTransfer:
		return requested, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}
