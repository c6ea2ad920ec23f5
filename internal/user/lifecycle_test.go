package user_test

import (
	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/identity"
	"github.com/tarefa360/tarefa360/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Account lifecycle", func() {
	Describe("ValidateAccount", func() {
		It("rejects an unknown role", func() {
			in := account("auditor", "")
			_, err := user.ValidateAccount(user.ModeCreate, in)
			Expect(internal.HasCode(err, internal.ErrCodeValidationFailed)).To(BeTrue())
		})

		It("normalizes the role", func() {
			in := account(" Appraiser ", "")
			role, err := user.ValidateAccount(user.ModeCreate, in)
			Expect(err).NotTo(HaveOccurred())
			Expect(role).To(Equal(user.RoleAppraiser))
		})

		DescribeTable("required fields",
			func(mutate func(*user.AccountInput), message string) {
				in := account(user.RoleAppraiser, "")
				mutate(&in)
				_, err := user.ValidateAccount(user.ModeCreate, in)
				Expect(err).To(MatchError(message))
			},
			Entry("name", func(in *user.AccountInput) { in.Name = "  " }, "name is required"),
			Entry("posto_grad", func(in *user.AccountInput) { in.PostoGrad = "" }, "posto_grad is required"),
			Entry("sector", func(in *user.AccountInput) { in.Sector = "" }, "sector is required"),
			Entry("job_title", func(in *user.AccountInput) { in.JobTitle = "" }, "job_title is required"),
		)

		It("asks for an appraiser only on create", func() {
			in := account(user.RoleAppraisee, "")
			_, err := user.ValidateAccount(user.ModeCreate, in)
			Expect(internal.HasCode(err, internal.ErrCodeMissingAppraiser)).To(BeTrue())

			_, err = user.ValidateAccount(user.ModeEdit, in)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("PrepareCreate", func() {
		roster := []identity.Credential{{ID: "u1", CPF: "11122233344"}, {ID: "u2", CPF: identity.SentinelCPF}}

		It("derives the default password from the CPF and nome de guerra", func() {
			draft, err := user.PrepareCreate(account(user.RoleAdmin, "55566677788"), roster, user.FlowAdminCreate)
			Expect(err).NotTo(HaveOccurred())
			Expect(draft.InitialPassword).To(Equal("5556Souza"))
			Expect(draft.User.ForcePasswordChange).To(BeTrue())
			Expect(draft.Association).To(BeNil())
		})

		It("uses the sentinel for the password of an account without CPF", func() {
			draft, err := user.PrepareCreate(account(user.RoleAdmin, ""), roster, user.FlowAdminCreate)
			Expect(err).NotTo(HaveOccurred())
			Expect(draft.InitialPassword).To(Equal("9999Souza"))
			Expect(draft.User.Status).To(Equal(identity.StatusInactive))
		})

		It("applies the flow's default-CPF policy", func() {
			draft, err := user.PrepareCreate(account(user.RoleAppraiser, ""), roster, user.FlowAppraiserQuickAdd)
			Expect(err).NotTo(HaveOccurred())
			Expect(draft.User.Status).To(Equal(identity.StatusActive))
		})

		It("rejects a duplicate CPF", func() {
			_, err := user.PrepareCreate(account(user.RoleAdmin, "111.222.333-44"), roster, user.FlowAdminCreate)
			Expect(internal.HasCode(err, internal.ErrCodeDuplicateCPF)).To(BeTrue())
		})

		It("rejects a malformed CPF", func() {
			_, err := user.PrepareCreate(account(user.RoleAdmin, "123"), roster, user.FlowAdminCreate)
			Expect(err).To(MatchError("cpf must be exactly 11 digits"))
		})

		It("carries the association payload for an appraisee", func() {
			in := account(user.RoleAppraisee, "")
			in.AppraiserID = "u1"
			draft, err := user.PrepareCreate(in, roster, user.FlowAdminCreate)
			Expect(err).NotTo(HaveOccurred())
			Expect(draft.Association).NotTo(BeNil())
			Expect(draft.Association.AppraiseeID).To(Equal(draft.User.ID))
			Expect(draft.Association.AppraiserID).To(Equal("u1"))
		})
	})

	Describe("ApplyEdit", func() {
		existing := &user.User{ID: "u1", CPF: identity.SentinelCPF, Role: user.RoleAppraiser, Status: identity.StatusInactive, PasswordHash: "h"}

		It("excludes the edited user from the uniqueness check", func() {
			roster := []identity.Credential{{ID: "u1", CPF: "11122233344"}}
			next, err := user.ApplyEdit(existing, account(user.RoleAppraiser, "11122233344"), roster)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.Status).To(Equal(identity.StatusActive))
			Expect(next.PasswordHash).To(Equal("h"))
			Expect(existing.Status).To(Equal(identity.StatusInactive))
		})

		It("deactivates an account whose CPF is cleared", func() {
			active := &user.User{ID: "u1", CPF: "11122233344", Role: user.RoleAppraiser, Status: identity.StatusActive}
			next, err := user.ApplyEdit(active, account(user.RoleAppraiser, ""), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.CPF).To(Equal(identity.SentinelCPF))
			Expect(next.Status).To(Equal(identity.StatusInactive))
		})
	})

	Describe("ApplyProfileEdit", func() {
		It("requires every profile field", func() {
			_, err := user.ApplyProfileEdit(&user.User{ID: "u1"}, user.ProfileInput{Name: "A", NomeDeGuerra: "B"})
			Expect(err).To(MatchError("email is required"))
		})
	})

	Describe("Role policy", func() {
		It("routes each role to its dashboard", func() {
			Expect(user.RoleAdmin.DashboardRoute()).To(Equal("/admin/dashboard"))
			Expect(user.RoleAppraiser.DashboardRoute()).To(Equal("/appraiser/dashboard"))
			Expect(user.RoleAppraisee.DashboardRoute()).To(Equal("/appraisee/dashboard"))
		})

		It("lets only appraisers and appraisees own activities", func() {
			Expect(user.RoleAdmin.Policy().CanOwnActivities).To(BeFalse())
			Expect(user.RoleAppraiser.Policy().CanOwnActivities).To(BeTrue())
			Expect(user.RoleAppraisee.Policy().CanOwnActivities).To(BeTrue())
		})
	})
})
