package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sjperalta/devagency-api/internal/models"
)

func TestSplitPayout(t *testing.T) {
	split := SplitPayout(decimal.NewFromInt(5000))
	assert.True(t, decimal.NewFromInt(2000).Equal(split.Advance))
	assert.True(t, decimal.NewFromInt(3000).Equal(split.Remaining))
}

func TestSplitPayout_SumsToCost(t *testing.T) {
	for _, raw := range []string{"0", "0.01", "0.05", "1", "333.33", "1000.07", "98765.43"} {
		cost := decimal.RequireFromString(raw)
		split := SplitPayout(cost)

		assert.True(t, split.Advance.Add(split.Remaining).Equal(cost), "cost %s", raw)
		assert.True(t, Equal(split.Advance, cost.Mul(AdvanceShare)), "cost %s", raw)
		assert.False(t, split.Advance.IsNegative())
		assert.False(t, split.Remaining.IsNegative())
	}
}

func TestDeveloperPaid_Flags(t *testing.T) {
	tests := []struct {
		name     string
		advance  bool
		final    bool
		expected int64
	}{
		{"nothing released", false, false, 0},
		{"advance only", true, false, 2000},
		{"final only", false, true, 3000},
		{"both", true, true, 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := models.ProjectDeveloper{
				Cost:          decimal.NewFromInt(5000),
				IsAdvancePaid: tt.advance,
				IsFinalPaid:   tt.final,
			}
			paid := DeveloperPaid(&dev)
			assert.True(t, decimal.NewFromInt(tt.expected).Equal(paid), "got %s", paid)
			assert.True(t, paid.LessThanOrEqual(dev.Cost))
		})
	}
}
