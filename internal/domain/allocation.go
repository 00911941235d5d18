package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ShareItem is one participant's percentage in an allocation
type ShareItem struct {
	PersonID   uuid.UUID
	Percentage float64
}

// CalculateShares splits an expense amount across participants by percentage.
// Returns a map of person ID to the part of the amount that person bears.
// Logic:
//  1. share_i = round(amount * pct_i / 100, 2 decimals, half-up)
//  2. residual = amount - sum(share_i), usually a cent or two either way
//  3. The residual is added to the payer's own share
//
// Safety: the returned shares always sum to amount exactly (no penny lost)
func CalculateShares(amount decimal.Decimal, payerID uuid.UUID, items []ShareItem) (map[uuid.UUID]decimal.Decimal, error) {
	if amount.IsNegative() {
		return nil, NewValidationError("amount", "cannot be negative")
	}

	if len(items) == 0 {
		return nil, errors.New("items list cannot be empty")
	}

	shares := make(map[uuid.UUID]decimal.Decimal, len(items))
	assigned := decimal.Zero
	payerFound := false

	for _, item := range items {
		share := ShareOf(amount, item.Percentage)
		shares[item.PersonID] = share
		assigned = assigned.Add(share)
		if item.PersonID == payerID {
			payerFound = true
		}
	}

	if !payerFound {
		return nil, NewValidationError("payer_id", "payer is not a participant")
	}

	residual := amount.Sub(assigned)
	shares[payerID] = shares[payerID].Add(residual)

	// Safety check: shares must add back up to the original amount
	total := decimal.Zero
	for _, share := range shares {
		total = total.Add(share)
	}
	if !total.Equal(amount) {
		return nil, errors.New("total allocation does not equal expense amount")
	}

	return shares, nil
}

// ShareOf returns round(amount * percentage / 100) to the cent, half-up
func ShareOf(amount decimal.Decimal, percentage float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(percentage)).Div(hundred).Round(2)
}
