package costs

import (
	"math"

	"github.com/thub1271/sigmastate-interpreter/domain/sigmastate/ruleerrors"
)

// TypeCode identifies an argument type for type-dependent cost kinds. The
// expression type system itself lives outside this package, only the code is
// needed for pricing.
type TypeCode byte

// FixedCost is the descriptor of an operation whose cost doesn't depend on
// its arguments.
type FixedCost struct {
	Cost uint64
}

// PerItemCost is the descriptor of an operation whose cost is amortized over
// chunks of processed items.
type PerItemCost struct {
	BaseCost     uint64
	PerChunkCost uint64
	ChunkSize    uint64
}

// Chunks returns the number of chunks needed to process nItems, i.e. the
// ceiling of nItems / ChunkSize. Computed by division rather than the usual
// add-then-divide, which would wrap for item counts near the integer maximum.
func (c PerItemCost) Chunks(nItems uint64) uint64 {
	if c.ChunkSize == 0 {
		return nItems
	}
	chunks := nItems / c.ChunkSize
	if nItems%c.ChunkSize != 0 {
		chunks++
	}
	return chunks
}

// Cost returns the total cost of processing nItems items. The result
// saturates at the maximum representable value, which AddCostChecked then
// necessarily reports as over-budget.
func (c PerItemCost) Cost(nItems uint64) uint64 {
	chunks := c.Chunks(nItems)
	if c.PerChunkCost != 0 && chunks > (math.MaxUint64-c.BaseCost)/c.PerChunkCost {
		return math.MaxUint64
	}
	return c.BaseCost + chunks*c.PerChunkCost
}

// TypeBasedCost is the descriptor of an operation whose cost depends on the
// type of its argument.
type TypeBasedCost struct {
	CostFunc func(TypeCode) uint64
}

// Cost returns the cost of applying the operation to an argument of the given
// type.
func (c TypeBasedCost) Cost(typeCode TypeCode) uint64 {
	return c.CostFunc(typeCode)
}

// AddCostChecked adds delta to the current accumulated cost and fails with
// ErrCostLimitExceeded when the sum goes over limit. An addition that would
// overflow the integer width is over any representable limit and fails the
// same way rather than wrapping around.
func AddCostChecked(current, delta, limit uint64) (uint64, error) {
	if current > limit || delta > limit-current {
		return 0, ruleerrors.NewErrBudgetExceeded(current, delta, limit)
	}
	return current + delta, nil
}
