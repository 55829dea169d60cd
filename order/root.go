package order

// Root is the distinguished identity timestamp ⊤ used at the top of the
// scope nesting: the outermost scope has exactly one timestamp value, so
// every Root is equal to and LessEqual every other Root.
type Root struct{}

func (Root) LessEqual(Root) bool { return true }
func (Root) Less(Root) bool      { return false }

// RootSummary is the only summary at the root scope: the identity.
type RootSummary struct{}

func (RootSummary) FollowedBy(RootSummary) RootSummary { return RootSummary{} }
func (RootSummary) ResultsIn(Root) (Root, bool)         { return Root{}, true }

// LessEqual is trivially true: RootSummary has exactly one value, so the
// reachability engine's summary antichains over it are always singletons.
func (RootSummary) LessEqual(RootSummary) bool { return true }

var (
	_ = assertTimestamp[Root]
	_ = assertSummary[Root, RootSummary]
	_ = assertTimestamp[RootSummary]
)
