package progress_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/flowmesh/xdf/order"
	"github.com/flowmesh/xdf/progress"
)

var _ = Describe("ChangeBatch", func() {
	It("combines duplicate timestamps and drops zero counts", func() {
		cb := progress.NewChangeBatch[order.Natural]()
		cb.Append(3, 2)
		cb.Append(1, 5)
		cb.Append(3, -2)
		cb.Append(1, 1)

		updates := cb.Updates()
		Expect(updates).To(HaveLen(1))
		Expect(updates[0].Time).To(Equal(order.Natural(1)))
		Expect(updates[0].Delta).To(Equal(int64(6)))
	})

	It("sorts updates by the total order after canonicalization", func() {
		cb := progress.NewChangeBatch[order.Natural]()
		cb.Append(5, 1)
		cb.Append(1, 1)
		cb.Append(3, 1)

		updates := cb.Updates()
		Expect(updates).To(HaveLen(3))
		for i := 1; i < len(updates); i++ {
			Expect(updates[i-1].Time.Less(updates[i].Time)).To(BeTrue())
		}
	})

	It("reports empty exactly when every count has canceled", func() {
		cb := progress.NewChangeBatch[order.Natural]()
		cb.Append(1, 4)
		cb.Append(1, -4)
		Expect(cb.IsEmpty()).To(BeTrue())
	})

	It("preserves the multiset sum across DrainInto", func() {
		src := progress.NewChangeBatch[order.Natural]()
		src.Append(1, 3)
		src.Append(2, 4)

		dst := progress.NewChangeBatch[order.Natural]()
		dst.Append(1, 1)

		src.DrainInto(dst)

		Expect(src.IsEmpty()).To(BeTrue())
		updates := dst.Updates()
		var sum int64
		for _, u := range updates {
			sum += u.Delta
		}
		Expect(sum).To(Equal(int64(8)))
	})
})
