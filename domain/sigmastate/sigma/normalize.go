package sigma

// NewAnd builds the conjunction of children, short-circuiting over trivial
// propositions: any trivially false child makes the whole statement trivially
// false, trivially true children are dropped.
func NewAnd(children ...SigmaBoolean) SigmaBoolean {
	remaining := make([]SigmaBoolean, 0, len(children))
	for _, child := range children {
		if trivial, ok := child.(*TrivialProp); ok {
			if !trivial.Value {
				return TrivialFalseProp
			}
			continue
		}
		remaining = append(remaining, child)
	}
	switch len(remaining) {
	case 0:
		return TrivialTrueProp
	case 1:
		return remaining[0]
	default:
		return &And{Children: remaining}
	}
}

// NewOr builds the disjunction of children, short-circuiting over trivial
// propositions: any trivially true child makes the whole statement trivially
// true, trivially false children are dropped.
func NewOr(children ...SigmaBoolean) SigmaBoolean {
	remaining := make([]SigmaBoolean, 0, len(children))
	for _, child := range children {
		if trivial, ok := child.(*TrivialProp); ok {
			if trivial.Value {
				return TrivialTrueProp
			}
			continue
		}
		remaining = append(remaining, child)
	}
	switch len(remaining) {
	case 0:
		return TrivialFalseProp
	case 1:
		return remaining[0]
	default:
		return &Or{Children: remaining}
	}
}

// NewThreshold builds a k-out-of-n statement. Trivially true children lower
// the remaining threshold, trivially false children lower the pool, and the
// degenerate forms collapse to their simpler equivalents: k<=0 is trivially
// true, k>n is trivially false, k==1 is an OR and k==n is an AND.
func NewThreshold(k int, children ...SigmaBoolean) SigmaBoolean {
	remaining := make([]SigmaBoolean, 0, len(children))
	for _, child := range children {
		if trivial, ok := child.(*TrivialProp); ok {
			if trivial.Value {
				k--
			}
			continue
		}
		remaining = append(remaining, child)
	}
	if k <= 0 {
		return TrivialTrueProp
	}
	if k > len(remaining) {
		return TrivialFalseProp
	}
	if k == 1 {
		return NewOr(remaining...)
	}
	if k == len(remaining) {
		return NewAnd(remaining...)
	}
	return &Threshold{K: uint8(k), Children: remaining}
}

// BoolToProp converts a plain boolean evaluation result to the corresponding
// trivial proposition.
func BoolToProp(value bool) SigmaBoolean {
	if value {
		return TrivialTrueProp
	}
	return TrivialFalseProp
}

// IsTrivialTrue reports whether the proposition is the trivially true one.
func IsTrivialTrue(proposition SigmaBoolean) bool {
	trivial, ok := proposition.(*TrivialProp)
	return ok && trivial.Value
}

// IsTrivialFalse reports whether the proposition is the trivially false one.
func IsTrivialFalse(proposition SigmaBoolean) bool {
	trivial, ok := proposition.(*TrivialProp)
	return ok && !trivial.Value
}
