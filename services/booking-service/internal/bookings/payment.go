package bookings

import "github.com/DrashtiGohil19/bookingcrown/services/booking-service/internal/model"

// DeriveOnCreate computes the payment status of a new booking. A one-time booking is
// paid only when nothing is pending; a partial advance still reads as pending here.
func DeriveOnCreate(b model.Booking) model.PaymentStatus {
	if b.PaymentType.Effective() == model.PaymentInstallment {
		return installmentStatus(b.Installments)
	}
	if b.Pending != nil && *b.Pending == 0 {
		return model.PaymentPaid
	}
	return model.PaymentPending
}

// DeriveOnUpdate recomputes the payment status after an update and, when fullyPaid
// is set, settles the outstanding balance on b.
func DeriveOnUpdate(b *model.Booking, fullyPaid bool) model.PaymentStatus {
	installment := b.PaymentType.Effective() == model.PaymentInstallment
	if fullyPaid {
		if installment {
			for i := range b.Installments {
				b.Installments[i].Status = model.InstallmentComplete
			}
		} else {
			zero := 0.0
			b.Pending = &zero
		}
		return model.PaymentPaid
	}
	if installment {
		return installmentStatus(b.Installments)
	}
	return advanceStatus(b.Amount, b.Advance)
}

func installmentStatus(items []model.Installment) model.PaymentStatus {
	for _, it := range items {
		if it.Status != model.InstallmentComplete {
			return model.PaymentPending
		}
	}
	return model.PaymentPaid
}

func advanceStatus(amount, advance *float64) model.PaymentStatus {
	if amount == nil {
		return model.PaymentPending
	}
	paid := 0.0
	if advance != nil {
		paid = *advance
	}
	switch {
	case paid >= *amount:
		return model.PaymentPaid
	case paid > 0:
		return model.PaymentPartial
	default:
		return model.PaymentPending
	}
}
