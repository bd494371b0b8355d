package costs

// CostItem is a single recorded cost event. Items are recorded in evaluation
// order so a trace can be replayed for audit.
type CostItem interface {
	OpName() string
	Cost() uint64
}

// FixedCostItem records an application of a fixed-cost operation.
type FixedCostItem struct {
	Name     string
	ItemCost FixedCost
}

// OpName returns the priced operation's name
func (i FixedCostItem) OpName() string { return i.Name }

// Cost returns the cost charged for this item
func (i FixedCostItem) Cost() uint64 { return i.ItemCost.Cost }

// SeqCostItem records an application of a per-item cost over a sequence of
// nItems items.
type SeqCostItem struct {
	Name     string
	ItemCost PerItemCost
	NItems   uint64
}

// OpName returns the priced operation's name
func (i SeqCostItem) OpName() string { return i.Name }

// Cost returns the cost charged for this item
func (i SeqCostItem) Cost() uint64 { return i.ItemCost.Cost(i.NItems) }

// Chunks returns the number of chunks this item was priced for
func (i SeqCostItem) Chunks() uint64 { return i.ItemCost.Chunks(i.NItems) }

// TypeBasedCostItem records an application of a type-dependent cost, with the
// cost already resolved against the argument type.
type TypeBasedCostItem struct {
	Name         string
	Type         TypeCode
	ResolvedCost uint64
}

// OpName returns the priced operation's name
func (i TypeBasedCostItem) OpName() string { return i.Name }

// Cost returns the cost charged for this item
func (i TypeBasedCostItem) Cost() uint64 { return i.ResolvedCost }

// CostDetails describes the cost of a reduction, either as an ordered trace
// of items or as a bare precomputed scalar. The two are interchangeable for
// the total, only a trace supports replay.
type CostDetails interface {
	Total() uint64
	Trace() []CostItem
}

// TracedCost is a CostDetails backed by an ordered item trace. The total is
// the saturating sum of the items.
type TracedCost struct {
	Items []CostItem
}

// Total returns the sum of all item costs
func (c TracedCost) Total() uint64 {
	total := uint64(0)
	for _, item := range c.Items {
		cost := item.Cost()
		if cost > ^uint64(0)-total {
			return ^uint64(0)
		}
		total += cost
	}
	return total
}

// Trace returns the recorded items in evaluation order
func (c TracedCost) Trace() []CostItem { return c.Items }

// GivenCost is a CostDetails with a precomputed total and an empty trace.
type GivenCost struct {
	Value uint64
}

// Total returns the precomputed total
func (c GivenCost) Total() uint64 { return c.Value }

// Trace returns nil, a given cost carries no trace
func (c GivenCost) Trace() []CostItem { return nil }
