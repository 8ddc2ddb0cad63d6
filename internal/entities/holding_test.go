package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMergeBuyWeightedAverage(t *testing.T) {
	tests := []struct {
		name                  string
		amount, avgPrice      string
		addAmount, addPrice   string
		wantAmount, wantPrice string
	}{
		{"equal weights", "10", "100", "10", "200", "20", "150"},
		{"unequal weights", "1", "100", "3", "200", "4", "175"},
		{"same price", "2.5", "40", "7.5", "40", "10", "40"},
		{"fractional amounts", "0.1", "30000", "0.3", "10000", "0.4", "15000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Holding{
				Amount:   decimal.RequireFromString(tt.amount),
				AvgPrice: decimal.RequireFromString(tt.avgPrice),
			}

			h.MergeBuy(decimal.RequireFromString(tt.addAmount), decimal.RequireFromString(tt.addPrice))

			require.True(t, h.Amount.Equal(decimal.RequireFromString(tt.wantAmount)), "amount: got %s", h.Amount)
			require.True(t, h.AvgPrice.Equal(decimal.RequireFromString(tt.wantPrice)), "avg price: got %s", h.AvgPrice)
		})
	}
}

func TestMergeBuyNoFloatDrift(t *testing.T) {
	// A thousand small purchases at the same price must leave the cost
	// basis exactly unchanged.
	h := Holding{
		Amount:   decimal.RequireFromString("1"),
		AvgPrice: decimal.RequireFromString("0.1"),
	}

	step := decimal.RequireFromString("0.001")
	price := decimal.RequireFromString("0.1")
	for i := 0; i < 1000; i++ {
		h.MergeBuy(step, price)
	}

	require.True(t, h.Amount.Equal(decimal.RequireFromString("2")), "got %s", h.Amount)
	require.True(t, h.AvgPrice.Equal(price), "got %s", h.AvgPrice)
}

func TestVerificationAuditAppendCopies(t *testing.T) {
	original := VerificationAudit{{Event: AuditSubmitted}}

	extended := original.Append(AuditEntry{Event: AuditApproved, Note: "ok"})

	require.Len(t, original, 1)
	require.Len(t, extended, 2)
	require.Equal(t, AuditApproved, extended[1].Event)

	// Appending to the original again must not clobber the first branch.
	other := original.Append(AuditEntry{Event: AuditRejected})
	require.Equal(t, AuditApproved, extended[1].Event)
	require.Equal(t, AuditRejected, other[1].Event)
}
