package period_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	"gorm.io/gorm"

	periodDatamodel "github.com/tarefa360/tarefa360/internal/core/datamodel/period"
	"github.com/tarefa360/tarefa360/internal/core/testdb"
	"github.com/tarefa360/tarefa360/internal/period"
	periodPostgres "github.com/tarefa360/tarefa360/internal/period/postgres"
	"github.com/tarefa360/tarefa360/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Period Handler Integration", func() {
	var (
		db      *gorm.DB
		service *period.Service
		router  chi.Router
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(data)
		}
		req := httptest.NewRequest(method, path, reader)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	activeCount := func() int64 {
		var n int64
		Expect(db.Model(&periodDatamodel.EvaluationPeriod{}).Where("status = ?", "Active").Count(&n).Error).NotTo(HaveOccurred())
		return n
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service = period.NewService(periodPostgres.NewPeriodRepository(db), nil, nil, slogger)
		handler := period.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Get("/periods", handler.GetPeriods)
		router.Post("/periods", handler.CreatePeriod)
		router.Get("/periods/active", handler.GetActivePeriod)
		router.Put("/periods/{id}", handler.UpdatePeriod)
		router.Delete("/periods/{id}", handler.DeletePeriod)
		router.Post("/periods/{id}/activate", handler.ActivatePeriod)
	})

	It("keeps a single active period when creating with activation", func() {
		rec := do(http.MethodPost, "/periods", period.PeriodRequest{Name: "2023", StartDate: "2023-01-01", EndDate: "2023-12-31", Activate: true})
		Expect(rec.Code).To(Equal(http.StatusCreated))
		rec = do(http.MethodPost, "/periods", period.PeriodRequest{Name: "2024", StartDate: "2024-01-01", EndDate: "2024-12-31", Activate: true})
		Expect(rec.Code).To(Equal(http.StatusCreated))

		Expect(activeCount()).To(Equal(int64(1)))

		rec = do(http.MethodGet, "/periods/active", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var active period.Period
		Expect(json.Unmarshal(rec.Body.Bytes(), &active)).To(Succeed())
		Expect(active.Name).To(Equal("2024"))
	})

	It("activates a period and deactivates the others", func() {
		first, err := service.CreatePeriod(context.Background(), period.PeriodRequest{Name: "2023", StartDate: "2023-01-01", EndDate: "2023-12-31", Activate: true})
		Expect(err).NotTo(HaveOccurred())
		second, err := service.CreatePeriod(context.Background(), period.PeriodRequest{Name: "2024", StartDate: "2024-01-01", EndDate: "2024-12-31"})
		Expect(err).NotTo(HaveOccurred())

		rec := do(http.MethodPost, "/periods/"+second.ID+"/activate", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(activeCount()).To(Equal(int64(1)))

		rec = do(http.MethodGet, "/periods", nil)
		var body period.PeriodsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Stale).To(BeFalse())
		Expect(body.Periods).To(HaveLen(2))
		for _, p := range body.Periods {
			Expect(p.IsActive()).To(Equal(p.ID == second.ID), p.Name)
		}
		Expect(first.ID).NotTo(Equal(second.ID))
	})

	It("does not enforce a single active period on ad hoc edits", func() {
		_, err := service.CreatePeriod(context.Background(), period.PeriodRequest{Name: "2023", StartDate: "2023-01-01", EndDate: "2023-12-31", Activate: true})
		Expect(err).NotTo(HaveOccurred())
		second, err := service.CreatePeriod(context.Background(), period.PeriodRequest{Name: "2024", StartDate: "2024-01-01", EndDate: "2024-12-31"})
		Expect(err).NotTo(HaveOccurred())

		rec := do(http.MethodPut, "/periods/"+second.ID, period.PeriodRequest{Name: "2024", StartDate: "2024-01-01", EndDate: "2024-12-31", Status: "Active"})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(activeCount()).To(Equal(int64(2)))
	})

	It("returns 404 when no period is active", func() {
		rec := do(http.MethodGet, "/periods/active", nil)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("returns 400 for an invalid range", func() {
		rec := do(http.MethodPost, "/periods", period.PeriodRequest{Name: "x", StartDate: "2024-12-01", EndDate: "2024-01-01"})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("deletes a period", func() {
		p, err := service.CreatePeriod(context.Background(), period.PeriodRequest{Name: "2024", StartDate: "2024-01-01", EndDate: "2024-12-31"})
		Expect(err).NotTo(HaveOccurred())

		Expect(do(http.MethodDelete, "/periods/"+p.ID, nil).Code).To(Equal(http.StatusNoContent))
		Expect(do(http.MethodDelete, "/periods/"+p.ID, nil).Code).To(Equal(http.StatusNotFound))
	})
})
