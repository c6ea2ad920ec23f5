package association_test

import (
	"github.com/tarefa360/tarefa360/internal/association"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {
	var list []association.Association

	BeforeEach(func() {
		list = []association.Association{
			{ID: "a1", AppraiseeID: "e1", AppraiserID: "r1"},
			{ID: "a2", AppraiseeID: "e2", AppraiserID: "r1"},
			{ID: "a3", AppraiseeID: "e3", AppraiserID: "r2"},
		}
	})

	It("finds the appraiser of an appraisee", func() {
		id, ok := association.FindAppraiserFor("e3", list)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal("r2"))

		_, ok = association.FindAppraiserFor("e9", list)
		Expect(ok).To(BeFalse())
	})

	It("finds the appraisees of an appraiser", func() {
		Expect(association.FindAppraiseesFor("r1", list)).To(Equal([]string{"e1", "e2"}))
		Expect(association.FindAppraiseesFor("r9", list)).To(BeEmpty())
	})

	It("creates without checking uniqueness", func() {
		a := association.Create("e1", "r2")
		Expect(a.ID).NotTo(BeEmpty())
		Expect(a.AppraiseeID).To(Equal("e1"))
		Expect(a.AppraiserID).To(Equal("r2"))
	})

	It("removes by id without touching the input", func() {
		out := association.Remove(list, "a2")
		Expect(out).To(HaveLen(2))
		Expect(list).To(HaveLen(3))
		Expect(association.Remove(list, "missing")).To(HaveLen(3))
	})
})
