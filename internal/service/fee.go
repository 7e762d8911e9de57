package service

import "math"

// PlatformFeeRate is the marketplace cut taken from every checkout.
const PlatformFeeRate = 0.15

// ComputeSplit splits a gross amount in cents into the platform fee and the
// vendor payout. fee + vendor always equals gross.
func ComputeSplit(grossCents int64) (feeCents, vendorCents int64) {
	feeCents = int64(math.Round(float64(grossCents) * PlatformFeeRate))
	vendorCents = grossCents - feeCents
	return feeCents, vendorCents
}
