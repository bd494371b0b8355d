package costs

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pkg/errors"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
)

func TestAddCostChecked(t *testing.T) {
	tests := []struct {
		name       string
		current    uint64
		delta      uint64
		limit      uint64
		expected   uint64
		expectFail bool
	}{
		{name: "zero plus zero", current: 0, delta: 0, limit: 0, expected: 0},
		{name: "exactly at the limit", current: 90, delta: 10, limit: 100, expected: 100},
		{name: "one over the limit", current: 90, delta: 11, limit: 100, expectFail: true},
		{name: "current already over", current: 101, delta: 0, limit: 100, expectFail: true},
		{name: "overflow doesn't wrap", current: math.MaxUint64, delta: math.MaxUint64, limit: math.MaxUint64, expectFail: true},
		{name: "max limit max delta", current: 0, delta: math.MaxUint64, limit: math.MaxUint64, expected: math.MaxUint64},
	}

	for _, test := range tests {
		total, err := AddCostChecked(test.current, test.delta, test.limit)
		if test.expectFail {
			if err == nil {
				t.Errorf("%s: expected a cost-limit failure, got total %d", test.name, total)
				continue
			}
			var budgetErr ruleerrors.ErrBudgetExceeded
			if !errors.As(err, &budgetErr) {
				t.Errorf("%s: expected ErrBudgetExceeded, got %+v", test.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %+v", test.name, err)
			continue
		}
		if total != test.expected {
			t.Errorf("%s: expected total %d, got %d", test.name, test.expected, total)
		}
	}
}

func TestAddCostCheckedProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("succeeds exactly when the sum fits under the limit without overflowing",
		prop.ForAll(func(current, delta, limit uint64) bool {
			total, err := AddCostChecked(current, delta, limit)
			overflows := delta > math.MaxUint64-current
			fits := !overflows && current+delta <= limit
			if fits {
				return err == nil && total == current+delta
			}
			return err != nil
		}, gen.UInt64(), gen.UInt64(), gen.UInt64()))

	properties.TestingRun(t)
}

func TestPerItemCostChunks(t *testing.T) {
	tests := []struct {
		name           string
		cost           PerItemCost
		nItems         uint64
		expectedChunks uint64
		expectedCost   uint64
	}{
		{
			name:           "zero items is zero chunks",
			cost:           PerItemCost{BaseCost: 5, PerChunkCost: 3, ChunkSize: 10},
			nItems:         0,
			expectedChunks: 0,
			expectedCost:   5,
		},
		{
			name:           "one item rounds up to one chunk",
			cost:           PerItemCost{BaseCost: 5, PerChunkCost: 3, ChunkSize: 10},
			nItems:         1,
			expectedChunks: 1,
			expectedCost:   8,
		},
		{
			name:           "a full chunk is still one chunk",
			cost:           PerItemCost{BaseCost: 5, PerChunkCost: 3, ChunkSize: 10},
			nItems:         10,
			expectedChunks: 1,
			expectedCost:   8,
		},
		{
			name:           "a chunk and one more",
			cost:           PerItemCost{BaseCost: 5, PerChunkCost: 3, ChunkSize: 10},
			nItems:         11,
			expectedChunks: 2,
			expectedCost:   11,
		},
		{
			name:           "zero chunk size falls back to per item",
			cost:           PerItemCost{BaseCost: 1, PerChunkCost: 2, ChunkSize: 0},
			nItems:         7,
			expectedChunks: 7,
			expectedCost:   15,
		},
		{
			name:           "saturates instead of wrapping",
			cost:           PerItemCost{BaseCost: 1, PerChunkCost: math.MaxUint64 / 2, ChunkSize: 1},
			nItems:         3,
			expectedChunks: 3,
			expectedCost:   math.MaxUint64,
		},
		{
			name:           "near-max item count doesn't wrap the chunk count",
			cost:           PerItemCost{BaseCost: 0, PerChunkCost: 1, ChunkSize: 2},
			nItems:         math.MaxUint64,
			expectedChunks: math.MaxUint64/2 + 1,
			expectedCost:   math.MaxUint64/2 + 1,
		},
	}

	for _, test := range tests {
		chunks := test.cost.Chunks(test.nItems)
		if chunks != test.expectedChunks {
			t.Errorf("%s: expected %d chunks, got %d", test.name, test.expectedChunks, chunks)
		}
		cost := test.cost.Cost(test.nItems)
		if cost != test.expectedCost {
			t.Errorf("%s: expected cost %d, got %d", test.name, test.expectedCost, cost)
		}
	}
}

func TestCostDetails(t *testing.T) {
	traced := TracedCost{Items: []CostItem{
		FixedCostItem{Name: "A", ItemCost: FixedCost{Cost: 10}},
		SeqCostItem{Name: "B", ItemCost: PerItemCost{BaseCost: 1, PerChunkCost: 2, ChunkSize: 1}, NItems: 3},
		TypeBasedCostItem{Name: "C", Type: TypeCode(1), ResolvedCost: 4},
	}}
	if traced.Total() != 21 {
		t.Errorf("expected traced total 21, got %d", traced.Total())
	}
	if len(traced.Trace()) != 3 {
		t.Errorf("expected 3 trace items, got %d", len(traced.Trace()))
	}

	given := GivenCost{Value: 21}
	if given.Total() != traced.Total() {
		t.Errorf("a GivenCost of the traced total should be interchangeable: %d != %d",
			given.Total(), traced.Total())
	}
	if given.Trace() != nil {
		t.Errorf("a GivenCost should carry no trace")
	}

	saturating := TracedCost{Items: []CostItem{
		FixedCostItem{Name: "big", ItemCost: FixedCost{Cost: math.MaxUint64}},
		FixedCostItem{Name: "more", ItemCost: FixedCost{Cost: 1}},
	}}
	if saturating.Total() != math.MaxUint64 {
		t.Errorf("expected a saturated total, got %d", saturating.Total())
	}
}
