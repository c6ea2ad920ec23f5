package activity_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	"gorm.io/gorm"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/activity"
	activityPostgres "github.com/tarefa360/tarefa360/internal/activity/postgres"
	"github.com/tarefa360/tarefa360/internal/core/testdb"
	"github.com/tarefa360/tarefa360/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Activity Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		repo := activityPostgres.NewActivityRepository(db)
		service := activity.NewService(repo, ownerDirectory{"ana": true, "bruno": true}, nil, nil, slogger)
		handler := activity.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if id := r.Header.Get("X-Test-User"); id != "" {
					r = r.WithContext(internal.ContextWithUserID(r.Context(), id))
				}
				next.ServeHTTP(w, r)
			})
		})
		router.Get("/activities", handler.ListActivities)
		router.Post("/activities", handler.CreateActivity)
		router.Post("/activities/form/check", handler.CheckForm)
		router.Get("/activities/{id}", handler.GetActivity)
		router.Put("/activities/{id}", handler.UpdateActivity)
		router.Get("/activities/{id}/progress", handler.GetLedger)
		router.Post("/activities/{id}/progress", handler.AddProgress)
		router.Delete("/activities/{id}/progress/{year}/{month}", handler.RemoveProgress)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	do := func(method, path, user string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	create := func() activity.ActivityResponse {
		w := do(http.MethodPost, "/activities", "ana", map[string]string{"title": "Relatório", "start_date": "2024-01-05"})
		Expect(w.Code).To(Equal(http.StatusCreated))
		var resp activity.ActivityResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		return resp
	}

	It("requires an identified caller", func() {
		w := do(http.MethodGet, "/activities", "", nil)
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("creates an activity and round-trips the ledger through the store", func() {
		created := create()
		Expect(created.StartDate).To(Equal("2024-01-05"))
		Expect(created.ReadOnly).To(BeFalse())

		w := do(http.MethodPost, "/activities/"+created.ID+"/progress", "ana", map[string]interface{}{"year": 2024, "month": 1, "percentage": 50})
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodPost, "/activities/"+created.ID+"/progress", "ana", map[string]interface{}{"year": 2024, "month": 1, "percentage": 80})
		Expect(w.Code).To(Equal(http.StatusConflict))

		w = do(http.MethodPost, "/activities/"+created.ID+"/progress", "ana", map[string]interface{}{"year": 2024, "month": 2, "percentage": 80})
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = do(http.MethodGet, "/activities/"+created.ID+"/progress", "ana", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var ledger activity.LedgerResponse
		Expect(json.NewDecoder(w.Body).Decode(&ledger)).To(Succeed())
		Expect(ledger.Entries).To(HaveLen(2))
		Expect(ledger.Latest.Month).To(Equal(2))

		w = do(http.MethodDelete, "/activities/"+created.ID+"/progress/2024/2", "ana", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var after activity.ActivityResponse
		Expect(json.NewDecoder(w.Body).Decode(&after)).To(Succeed())
		Expect(after.ProgressHistory).To(HaveLen(1))
	})

	It("serves another user's activity as read-only", func() {
		created := create()

		w := do(http.MethodGet, "/activities/"+created.ID, "bruno", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp activity.ActivityResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.ReadOnly).To(BeTrue())

		w = do(http.MethodPut, "/activities/"+created.ID, "bruno", map[string]string{"title": "outro"})
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("rejects an invalid create without storing anything", func() {
		w := do(http.MethodPost, "/activities", "ana", map[string]string{"title": "Relatório"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))

		w = do(http.MethodGet, "/activities", "ana", nil)
		var body struct {
			Activities []activity.ActivityResponse `json:"activities"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Activities).To(BeEmpty())
	})

	It("answers form checks", func() {
		w := do(http.MethodPost, "/activities/form/check", "ana", activity.FormState{Title: "x", StartDate: "2024-01-01", EntryDraftOpen: true})
		Expect(w.Code).To(Equal(http.StatusOK))
		var resp activity.FormCheckResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.SaveAllowed).To(BeFalse())
		Expect(resp.StartDateEditable).To(BeTrue())
	})
})
