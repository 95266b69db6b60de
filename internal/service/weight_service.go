package service

import "math"

// WeightService computes excess baggage charges from the configured
// free allowance and per-kilogram fee.
type WeightService struct {
	maxFreeKg float64
	feePerKg  float64
}

// NewWeightService constructs a WeightService.
func NewWeightService(maxFreeKg, feePerKg float64) *WeightService {
	return &WeightService{maxFreeKg: maxFreeKg, feePerKg: feePerKg}
}

// BaggageCharge is the outcome of a baggage weight declaration.
type BaggageCharge struct {
	WeightKg        float64 `json:"weight_kg"`
	MaxFreeKg       float64 `json:"max_free_kg"`
	ExcessKg        float64 `json:"excess_kg"`
	Fee             float64 `json:"fee"`
	Currency        string  `json:"currency"`
	PaymentRequired bool    `json:"payment_required"`
}

// hardLimitKg is the most a single checked bag may weigh for safety
// reasons, independent of fees.
const hardLimitKg = 50

// Calculate validates the declared weight and returns the charge. Fees
// are rounded to whole currency units, charging each started kilogram
// over the allowance.
func (s *WeightService) Calculate(weightKg float64) (*BaggageCharge, *Error) {
	if weightKg <= 0 {
		return nil, ErrValidation("Baggage weight must be greater than zero")
	}
	if weightKg > hardLimitKg {
		return nil, ErrValidation("Baggage exceeds the maximum checked weight of 50kg")
	}

	excess := weightKg - s.maxFreeKg
	if excess < 0 {
		excess = 0
	}
	excess = math.Ceil(excess)

	return &BaggageCharge{
		WeightKg:        weightKg,
		MaxFreeKg:       s.maxFreeKg,
		ExcessKg:        excess,
		Fee:             excess * s.feePerKg,
		Currency:        "INR",
		PaymentRequired: excess > 0,
	}, nil
}
