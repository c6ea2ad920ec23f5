package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tarefa360/tarefa360/api"
	"github.com/tarefa360/tarefa360/internal/core/testdb"
	"github.com/tarefa360/tarefa360/internal/transport"
	"github.com/tarefa360/tarefa360/internal/transport/middleware"
	"github.com/tarefa360/tarefa360/internal/transport/rest"
)

var _ = Describe("RegisterAllRoutes", func() {
	var (
		router *chi.Mux
		lg     *slog.Logger
	)

	BeforeEach(func() {
		lg = slog.New(slog.NewTextHandler(io.Discard, nil))
		gormDB, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := gormDB.DB()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(sqlDB.Close)

		validator, err := middleware.NewRequestValidator(context.Background(), api.Spec, rest.APIPrefix, transport.NewBaseHandler(lg))
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{}, rest.Options{
			DB:             sqlDB,
			Driver:         "sqlite",
			Spec:           api.Spec,
			Validator:      validator,
			AllowedOrigins: []string{"*"},
			RequestTimeout: time.Second,
		}, lg)
	})

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	It("reports a reachable store as healthy", func() {
		rec := get("/api/v1/health")

		Expect(rec.Code).To(Equal(http.StatusOK))
		var body rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body.Status).To(Equal(rest.HealthHealthy))
		Expect(body.Components).To(HaveKey("sqlite"))
	})

	It("answers ping and tags the response with a trace id", func() {
		rec := get("/api/v1/ping")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get(middleware.TraceHeader)).NotTo(BeEmpty())
	})

	It("serves the embedded API document", func() {
		rec := get("/openapi.yml")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Tarefa360 API"))
	})

	It("leaves out routes whose handlers are not configured", func() {
		Expect(get("/api/v1/users").Code).To(Equal(http.StatusNotFound))
	})
})

var _ = Describe("HealthHandler", func() {
	It("reports an unconfigured store as unhealthy", func() {
		rec := httptest.NewRecorder()
		rest.NewHealthHandler(nil, "postgres").Check(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
