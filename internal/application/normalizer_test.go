package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/intelligence-service/internal/domain"
)

func TestNormalizeLines_DefaultsAndPlaceholders(t *testing.T) {
	raw := []domain.RawOrderLine{
		{RemainingQty: f64Ptr(5)}, // no code, no name
		{ProductCode: strPtr("P1"), RemainingQty: f64Ptr(3)},
		{ProductCode: strPtr("P2"), ProductName: strPtr("Gadget"), RemainingQty: f64Ptr(1)},
	}

	lines := NormalizeLines("ORD-7", raw, false)
	require.Len(t, lines, 3)

	assert.Equal(t, "UNKNOWN-ORD-7-1", lines[0].ProductCode)
	assert.Equal(t, "UNKNOWN-ORD-7-1", lines[0].ProductName)

	assert.Equal(t, "P1", lines[1].ProductCode)
	assert.Equal(t, "P1", lines[1].ProductName)

	assert.Equal(t, "Gadget", lines[2].ProductName)
}

func TestNormalizeLines_NilNumericsBecomeZero(t *testing.T) {
	raw := []domain.RawOrderLine{
		{ProductCode: strPtr("P1"), RemainingQty: f64Ptr(2)},
	}

	lines := NormalizeLines("ORD-1", raw, false)
	require.Len(t, lines, 1)

	assert.Equal(t, 0.0, lines[0].ReservedQty)
	assert.Equal(t, 0.0, lines[0].ReservedDeliveredQty)
	assert.Equal(t, 0.0, lines[0].OwnReservedQty())
}

func TestNormalizeLines_CompletedLineFiltering(t *testing.T) {
	raw := []domain.RawOrderLine{
		rawLine("DONE", 0, 10, 2), // nothing remaining, active claim of 8
		rawLine("OPEN", 4, 4, 0),
	}

	open := NormalizeLines("ORD-1", raw, false)
	require.Len(t, open, 1)
	assert.Equal(t, "OPEN", open[0].ProductCode)

	// Reservation accounting must still see the completed line's claim
	all := NormalizeLines("ORD-1", raw, true)
	require.Len(t, all, 2)
	assert.Equal(t, 8.0, all[0].OwnReservedQty())
}

func TestOrderLine_OwnReservedQtyNeverNegative(t *testing.T) {
	line := domain.OrderLine{ReservedQty: 3, ReservedDeliveredQty: 5}
	assert.Equal(t, 0.0, line.OwnReservedQty())
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		def      int
		expected int
	}{
		{"zero uses default", 0, 100, 100},
		{"negative uses default", -5, 50, 50},
		{"below floor clamps up", 5, 100, minResultLimit},
		{"above ceiling clamps down", 1000, 100, maxResultLimit},
		{"in range passes through", 75, 100, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, clampLimit(tt.limit, tt.def))
		})
	}
}
