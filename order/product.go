package order

// Product is the nested-scope timestamp (spec §3: "timestamps form a
// product (Outer, Inner)"). The induced order is the conjunction of the
// component orders, which is what makes a Product a valid partial order
// even though Outer and Inner are each typically totally ordered.
type Product[TO Data[TO], TI Data[TI]] struct {
	Outer TO
	Inner TI
}

func (p Product[TO, TI]) LessEqual(other Product[TO, TI]) bool {
	return p.Outer.LessEqual(other.Outer) && p.Inner.LessEqual(other.Inner)
}

// Less is an arbitrary total order (outer-major, inner-minor) used only
// for sorting/deduplication, not for frontier semantics.
func (p Product[TO, TI]) Less(other Product[TO, TI]) bool {
	if p.Outer != other.Outer {
		return p.Outer.Less(other.Outer)
	}
	return p.Inner.Less(other.Inner)
}

// ProductSummary is the path summary acting on a Product timestamp: it
// summarizes the outer and inner coordinates independently. SO and SI
// must themselves be Timestamp-ordered (in addition to being Summary
// monoids) so that a ProductSummary can serve as the element type of the
// reachability engine's minimal-summary antichains.
type ProductSummary[TO Data[TO], SO interface {
	Summary[TO, SO]
	Timestamp[SO]
}, TI Data[TI], SI interface {
	Summary[TI, SI]
	Timestamp[SI]
}] struct {
	Outer SO
	Inner SI
}

func (s ProductSummary[TO, SO, TI, SI]) FollowedBy(other ProductSummary[TO, SO, TI, SI]) ProductSummary[TO, SO, TI, SI] {
	return ProductSummary[TO, SO, TI, SI]{
		Outer: s.Outer.FollowedBy(other.Outer),
		Inner: s.Inner.FollowedBy(other.Inner),
	}
}

func (s ProductSummary[TO, SO, TI, SI]) ResultsIn(t Product[TO, TI]) (Product[TO, TI], bool) {
	outer, ok := s.Outer.ResultsIn(t.Outer)
	if !ok {
		return Product[TO, TI]{}, false
	}
	inner, ok := s.Inner.ResultsIn(t.Inner)
	if !ok {
		return Product[TO, TI]{}, false
	}
	return Product[TO, TI]{Outer: outer, Inner: inner}, true
}

// LessEqual is the product order over the two component summary orders.
func (s ProductSummary[TO, SO, TI, SI]) LessEqual(other ProductSummary[TO, SO, TI, SI]) bool {
	return s.Outer.LessEqual(other.Outer) && s.Inner.LessEqual(other.Inner)
}
