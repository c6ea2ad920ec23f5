package period_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/tarefa360/tarefa360/internal"
	periodDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/period"
	"github.com/tarefa360/tarefa360/internal/core/testdb"
	"github.com/tarefa360/tarefa360/internal/period"
	periodPostgres "github.com/tarefa360/tarefa360/internal/period/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// flakyRepository wraps the real repository; reads fail while down is set.
type flakyRepository struct {
	period.RepositoryAPI
	down bool
}

var errStoreDown = errors.New("dial tcp: connection refused")

func (f *flakyRepository) GetAll(ctx context.Context) ([]*periodDatamodel.EvaluationPeriod, error) {
	if f.down {
		return nil, errStoreDown
	}
	return f.RepositoryAPI.GetAll(ctx)
}

func (f *flakyRepository) GetByID(ctx context.Context, id string) (*periodDatamodel.EvaluationPeriod, error) {
	if f.down {
		return nil, errStoreDown
	}
	return f.RepositoryAPI.GetByID(ctx, id)
}

func (f *flakyRepository) GetActive(ctx context.Context) (*periodDatamodel.EvaluationPeriod, error) {
	if f.down {
		return nil, errStoreDown
	}
	return f.RepositoryAPI.GetActive(ctx)
}

var _ = Describe("Period Service", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		repo    *flakyRepository
		service *period.Service
	)

	insert := func(id, name, status string) {
		start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		Expect(db.Create(&periodDatamodel.EvaluationPeriod{
			ID:        id,
			Name:      name,
			StartDate: start,
			EndDate:   start.AddDate(0, 11, 30),
			Status:    status,
		}).Error).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
		repo = &flakyRepository{RepositoryAPI: periodPostgres.NewPeriodRepository(db)}
		service = period.NewService(repo, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

		insert("p1", "2023", "Inactive")
		insert("p2", "2024", "Active")
	})

	Describe("when the store goes down after a write", func() {
		It("serves every stored period after a create", func() {
			_, err := service.CreatePeriod(ctx, period.PeriodRequest{Name: "2025", StartDate: "2025-01-01", EndDate: "2025-12-31"})
			Expect(err).NotTo(HaveOccurred())

			repo.down = true
			listing := service.GetAllPeriods(ctx)
			Expect(listing.Stale).To(BeTrue())
			Expect(listing.Periods).To(HaveLen(3))
		})

		It("serves the activated period as the active one", func() {
			_, err := service.ActivatePeriod(ctx, "p1")
			Expect(err).NotTo(HaveOccurred())

			repo.down = true
			active, err := service.GetActivePeriod(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(active.ID).To(Equal("p1"))

			listing := service.GetAllPeriods(ctx)
			Expect(listing.Periods).To(HaveLen(2))
			for _, p := range listing.Periods {
				Expect(p.IsActive()).To(Equal(p.ID == "p1"))
			}
		})

		It("demotes the previously active period when creating an active one", func() {
			created, err := service.CreatePeriod(ctx, period.PeriodRequest{Name: "2025", StartDate: "2025-01-01", EndDate: "2025-12-31", Activate: true})
			Expect(err).NotTo(HaveOccurred())

			repo.down = true
			active, err := service.GetActivePeriod(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(active.ID).To(Equal(created.ID))
		})
	})

	It("serves nothing rather than a partial list when nothing was ever loaded", func() {
		repo.down = true
		listing := service.GetAllPeriods(ctx)
		Expect(listing.Stale).To(BeTrue())
		Expect(listing.Periods).To(BeEmpty())

		_, err := service.GetActivePeriod(ctx)
		Expect(internal.IsConnectionError(err)).To(BeTrue())
	})
})
