package activity_test

import (
	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/activity"
	"github.com/tarefa360/tarefa360/internal/progress"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Activity record", func() {
	Describe("New", func() {
		It("requires a title", func() {
			_, err := activity.New("u1", activity.CreateActivityRequest{Title: "  ", StartDate: "2024-01-01"})
			Expect(err).To(MatchError("title is required"))
		})

		It("requires a start date", func() {
			_, err := activity.New("u1", activity.CreateActivityRequest{Title: "Plano"})
			Expect(err).To(MatchError("start_date is required"))
		})

		It("rejects an unparseable start date", func() {
			_, err := activity.New("u1", activity.CreateActivityRequest{Title: "Plano", StartDate: "31/01/2024"})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			details := appErr.Details.(internal.ValidationErrors)
			Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidDate)))
		})

		It("trims the title and keeps the owner", func() {
			act, err := activity.New("u1", activity.CreateActivityRequest{Title: " Plano ", StartDate: "2024-01-01"})
			Expect(err).NotTo(HaveOccurred())
			Expect(act.Title).To(Equal("Plano"))
			Expect(act.UserID).To(Equal("u1"))
			Expect(act.StartDate.Format("2006-01-02")).To(Equal("2024-01-01"))
		})
	})

	Describe("edits return new values", func() {
		var act *activity.Activity

		BeforeEach(func() {
			var err error
			act, err = activity.New("u1", activity.CreateActivityRequest{Title: "Plano", StartDate: "2024-01-01"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("changes title and description without touching the original", func() {
			next, err := act.ApplyEdit(activity.UpdateActivityRequest{Title: "Plano B", Description: "detalhes"})
			Expect(err).NotTo(HaveOccurred())
			Expect(next.Title).To(Equal("Plano B"))
			Expect(act.Title).To(Equal("Plano"))
		})

		It("accepts a start date equal to the stored one", func() {
			same := "2024-01-01"
			_, err := act.ApplyEdit(activity.UpdateActivityRequest{Title: "Plano", StartDate: &same})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a new owner", func() {
			other := "u2"
			_, err := act.ApplyEdit(activity.UpdateActivityRequest{Title: "Plano", UserID: &other})
			Expect(err).To(MatchError("user_id cannot change after creation"))
		})

		It("adds and removes ledger entries on copies", func() {
			withEntry, err := act.WithProgress(progress.Entry{Year: 2024, Month: 1, Percentage: -20})
			Expect(err).NotTo(HaveOccurred())
			Expect(withEntry.ProgressHistory).To(Equal([]progress.Entry{{Year: 2024, Month: 1, Percentage: 0}}))
			Expect(act.ProgressHistory).To(BeEmpty())

			Expect(withEntry.WithoutProgress(2024, 1).ProgressHistory).To(BeEmpty())
			Expect(withEntry.ProgressHistory).To(HaveLen(1))
		})
	})

	Describe("IsSaveAllowed", func() {
		DescribeTable("form states",
			func(state activity.FormState, allowed bool) {
				Expect(activity.IsSaveAllowed(state)).To(Equal(allowed))
			},
			Entry("complete form", activity.FormState{Title: "Plano", StartDate: "2024-01-01"}, true),
			Entry("missing title", activity.FormState{StartDate: "2024-01-01"}, false),
			Entry("missing start date", activity.FormState{Title: "Plano"}, false),
			Entry("date parse error flagged", activity.FormState{Title: "Plano", StartDate: "2024-01-01", DateParseError: true}, false),
			Entry("unparseable date", activity.FormState{Title: "Plano", StartDate: "ontem"}, false),
			Entry("entry sub-form mid-edit", activity.FormState{Title: "Plano", StartDate: "2024-01-01", EntryDraftOpen: true}, false),
		)

		It("locks the start date once the activity exists", func() {
			Expect(activity.StartDateEditable(activity.FormState{})).To(BeTrue())
			Expect(activity.StartDateEditable(activity.FormState{ActivityID: "a1"})).To(BeFalse())
		})
	})
})
