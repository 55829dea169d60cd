package progress_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/flowmesh/xdf/order"
	"github.com/flowmesh/xdf/progress"
)

var _ = Describe("MutableAntichain", func() {
	It("reports the same frontier for reorderings of the same multiset", func() {
		run := func(seq []progress.Update[order.Natural]) []order.Natural {
			m := progress.NewMutableAntichain[order.Natural]()
			for _, u := range seq {
				m.Update(u.Time, u.Delta)
			}
			return append([]order.Natural{}, m.Frontier()...)
		}

		seqA := []progress.Update[order.Natural]{{Time: 3, Delta: 1}, {Time: 5, Delta: 1}, {Time: 3, Delta: -1}}
		seqB := []progress.Update[order.Natural]{{Time: 5, Delta: 1}, {Time: 3, Delta: 1}, {Time: 3, Delta: -1}}

		Expect(run(seqA)).To(ConsistOf(order.Natural(5)))
		Expect(run(seqB)).To(ConsistOf(order.Natural(5)))
	})

	It("keeps only minimal elements in the frontier", func() {
		m := progress.NewMutableAntichain[order.Natural]()
		m.Update(5, 1)
		m.Update(2, 1)
		m.Update(8, 1)
		Expect(m.Frontier()).To(ConsistOf(order.Natural(2)))
	})

	It("emits frontier change events only when the minimal set changes", func() {
		m := progress.NewMutableAntichain[order.Natural]()
		changes := m.Update(5, 1)
		Expect(changes).To(ConsistOf(progress.Update[order.Natural]{Time: 5, Delta: 1}))

		// adding a dominated timestamp changes the multiset but not the frontier
		changes = m.Update(9, 1)
		Expect(changes).To(BeEmpty())

		changes = m.Update(5, -1)
		Expect(changes).To(ConsistOf(
			progress.Update[order.Natural]{Time: 5, Delta: -1},
			progress.Update[order.Natural]{Time: 9, Delta: 1},
		))
	})

	It("is empty exactly when there are no outstanding counts", func() {
		m := progress.NewMutableAntichain[order.Natural]()
		Expect(m.IsEmpty()).To(BeTrue())
		m.Update(1, 1)
		Expect(m.IsEmpty()).To(BeFalse())
		m.Update(1, -1)
		Expect(m.IsEmpty()).To(BeTrue())
	})
})
