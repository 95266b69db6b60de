package service

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Payment status values returned by the gateway.
const (
	PaymentResultCompleted = "COMPLETED"
	PaymentResultDeclined  = "DECLINED"
	PaymentResultFailed    = "FAILED"
)

// PaymentResult is the gateway's answer to a charge attempt.
type PaymentResult struct {
	Status         string `json:"status"`
	Reference      string `json:"reference,omitempty"`
	FailureReason  string `json:"failure_reason,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// PaymentService simulates a card payment gateway. The outcome is a
// deterministic function of the amount so integration environments can
// exercise every path without a real processor:
//
//	amount ending in .99 -> DECLINED (insufficient funds)
//	amount ending in .88 -> FAILED   (gateway unavailable)
//	anything else        -> COMPLETED with a PAY-XXXXXXXX reference
type PaymentService struct{}

// NewPaymentService constructs a PaymentService.
func NewPaymentService() *PaymentService {
	return &PaymentService{}
}

// Charge attempts to collect the given amount. The idempotency key is
// echoed back the way a real gateway would acknowledge it; the mock
// itself has no retry window to deduplicate.
func (s *PaymentService) Charge(amount float64, currency, idempotencyKey string) (*PaymentResult, *Error) {
	if amount <= 0 {
		return nil, ErrValidation("Payment amount must be greater than zero")
	}
	if currency != "" && currency != "INR" {
		return nil, ErrValidation("Only INR payments are supported")
	}

	formatted := fmt.Sprintf("%.2f", amount)
	switch {
	case strings.HasSuffix(formatted, ".99"):
		return &PaymentResult{
			Status:         PaymentResultDeclined,
			FailureReason:  "INSUFFICIENT_FUNDS",
			IdempotencyKey: idempotencyKey,
		}, nil
	case strings.HasSuffix(formatted, ".88"):
		return &PaymentResult{
			Status:         PaymentResultFailed,
			FailureReason:  "GATEWAY_UNAVAILABLE",
			IdempotencyKey: idempotencyKey,
		}, nil
	}

	ref := "PAY-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return &PaymentResult{
		Status:         PaymentResultCompleted,
		Reference:      ref,
		IdempotencyKey: idempotencyKey,
	}, nil
}
