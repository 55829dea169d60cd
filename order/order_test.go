package order

import "testing"

func TestNaturalLessEqual(t *testing.T) {
	cases := []struct {
		a, b Natural
		want bool
	}{
		{0, 0, true},
		{1, 2, true},
		{2, 1, false},
		{5, 5, true},
	}
	for _, c := range cases {
		if got := c.a.LessEqual(c.b); got != c.want {
			t.Errorf("%d.LessEqual(%d) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestNaturalSummaryFollowedBy(t *testing.T) {
	s := NaturalSummary(3).FollowedBy(NaturalSummary(4))
	if s != 7 {
		t.Fatalf("got %d, want 7", s)
	}
}

func TestNaturalSummaryResultsIn(t *testing.T) {
	got, ok := NaturalSummary(5).ResultsIn(Natural(10))
	if !ok || got != 15 {
		t.Fatalf("got (%d, %v), want (15, true)", got, ok)
	}

	_, ok = NaturalSummary(1).ResultsIn(Natural(^uint64(0)))
	if ok {
		t.Fatalf("expected overflow to report ok=false")
	}
}

func TestProductLessEqual(t *testing.T) {
	a := Product[Natural, Natural]{Outer: 1, Inner: 5}
	b := Product[Natural, Natural]{Outer: 1, Inner: 6}
	c := Product[Natural, Natural]{Outer: 0, Inner: 9}

	if !a.LessEqual(b) {
		t.Errorf("expected a <= b")
	}
	if a.LessEqual(c) {
		t.Errorf("did not expect a <= c (outer coordinate is greater)")
	}
}

func TestProductSummaryResultsIn(t *testing.T) {
	s := ProductSummary[Natural, NaturalSummary, Natural, NaturalSummary]{
		Outer: NaturalSummary(1),
		Inner: NaturalSummary(2),
	}
	t0 := Product[Natural, Natural]{Outer: 0, Inner: 0}
	got, ok := s.ResultsIn(t0)
	if !ok {
		t.Fatalf("expected ok")
	}
	want := Product[Natural, Natural]{Outer: 1, Inner: 2}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
