package finance

import "github.com/google/uuid"

// PaymentTarget says where an incoming payment goes. It is a closed two-case
// variant: TargetedPayment settles one sale, GeneralPayment is spread FIFO
// across the customer's outstanding sales. Dispatch with a type switch.
type PaymentTarget interface {
	isPaymentTarget()
	String() string
}

// TargetedPayment applies the whole amount to a single sale
type TargetedPayment struct {
	SaleID uuid.UUID
}

// GeneralPayment is an account payment allocated oldest sale first
type GeneralPayment struct{}

func (TargetedPayment) isPaymentTarget() {}
func (GeneralPayment) isPaymentTarget()  {}

func (t TargetedPayment) String() string { return "targeted:" + t.SaleID.String() }
func (GeneralPayment) String() string    { return "general" }

// TargetSale builds a targeted payment
func TargetSale(saleID uuid.UUID) PaymentTarget {
	return TargetedPayment{SaleID: saleID}
}

// TargetGeneral builds a general account payment
func TargetGeneral() PaymentTarget {
	return GeneralPayment{}
}

// TargetFromOptionalSale maps an optional sale reference from the API edge
// onto the variant. This is the only place a nil sale id is interpreted.
func TargetFromOptionalSale(saleID *uuid.UUID) PaymentTarget {
	if saleID == nil || *saleID == uuid.Nil {
		return TargetGeneral()
	}
	return TargetSale(*saleID)
}
