package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/transport"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

var _ = Describe("CORS", func() {
	preflight := func(origin string) *http.Request {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/users", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		return req
	}

	It("answers preflight requests from a listed origin", func() {
		rec := httptest.NewRecorder()
		CORS([]string{"http://localhost:5173"})(okHandler).ServeHTTP(rec, preflight("http://localhost:5173"))

		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:5173"))
		Expect(rec.Header().Get("Access-Control-Allow-Headers")).To(ContainSubstring("Authorization"))
	})

	It("leaves other origins untagged", func() {
		rec := httptest.NewRecorder()
		CORS([]string{"http://localhost:5173"})(okHandler).ServeHTTP(rec, preflight("http://evil.example"))

		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("allows any origin with a wildcard", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		req.Header.Set("Origin", "http://anywhere.example")
		CORS([]string{"*"})(okHandler).ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})
})

var _ = Describe("RequestID", func() {
	It("keeps an incoming trace id", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-123")
		RequestID(okHandler).ServeHTTP(rec, req)

		Expect(rec.Header().Get(TraceHeader)).To(Equal("trace-123"))
	})

	It("mints one when the caller sends none", func() {
		rec := httptest.NewRecorder()
		RequestID(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Header().Get(TraceHeader)).To(HaveLen(36))
	})

	It("replaces a malformed trace id instead of logging it", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "bad id; drop table")
		RequestID(okHandler).ServeHTTP(rec, req)

		Expect(rec.Header().Get(TraceHeader)).To(HaveLen(36))
	})

	It("exposes the trace id to handlers through the context", func() {
		var seen string
		capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = internal.TraceIDFromContext(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-123")
		RequestID(capture).ServeHTTP(httptest.NewRecorder(), req)

		Expect(seen).To(Equal("trace-123"))
	})
})

var _ = Describe("RecoveryMiddleware", func() {
	It("turns a panic into a 500 error body", func() {
		boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
		rec := httptest.NewRecorder()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))

		RecoveryMiddleware(lg)(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["error"]).To(Equal("INTERNAL_ERROR"))
	})

	It("quotes the trace id in the error body", func() {
		boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
		rec := httptest.NewRecorder()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-123")

		RequestID(RecoveryMiddleware(lg)(boom)).ServeHTTP(rec, req)

		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["trace_id"]).To(Equal("trace-123"))
	})
})

var _ = Describe("Timeout", func() {
	It("bounds the request context", func() {
		var deadline time.Time
		var hasDeadline bool
		bounded := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deadline, hasDeadline = r.Context().Deadline()
		})

		Timeout(time.Second)(bounded).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(hasDeadline).To(BeTrue())
		Expect(time.Until(deadline)).To(BeNumerically("<=", time.Second))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("masks credentials in bodies and headers", func() {
		var out bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&out, nil))
		echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"cpf":"52998224725","password":"5299souza","profile":{"access_token":"abc"}}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer abc")
		rec := httptest.NewRecorder()

		LoggingMiddleware(lg)(echo).ServeHTTP(rec, req)

		Expect(rec.Body.String()).To(ContainSubstring("5299souza"))
		Expect(out.String()).NotTo(ContainSubstring("5299souza"))
		Expect(out.String()).NotTo(ContainSubstring("52998224725"))
		Expect(out.String()).NotTo(ContainSubstring("Bearer abc"))
		Expect(out.String()).To(ContainSubstring(redacted))
	})

	It("does not log non-JSON bodies", func() {
		Expect(filterSensitiveBody([]byte("plain text"))).To(Equal("[non-JSON body omitted]"))
		Expect(filterSensitiveBody(nil)).To(BeEmpty())
	})
})

const testSpec = `
openapi: 3.0.3
info:
  title: test
  version: 1.0.0
servers:
  - url: /api/v1
paths:
  /things:
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
                  minLength: 1
      responses:
        '201':
          description: Created
`

var _ = Describe("RequestValidator", func() {
	var (
		validator *RequestValidator
		received  string
		handler   http.Handler
	)

	BeforeEach(func() {
		base := transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
		var err error
		validator, err = NewRequestValidator(context.Background(), []byte(testSpec), "/api/v1", base)
		Expect(err).NotTo(HaveOccurred())

		received = ""
		handler = validator.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, _ := io.ReadAll(r.Body)
			received = string(data)
			w.WriteHeader(http.StatusCreated)
		}))
	})

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	It("passes a conforming request through with its body intact", func() {
		rec := post("/api/v1/things", `{"name":"x"}`)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(received).To(MatchJSON(`{"name":"x"}`))
	})

	It("rejects a body missing a required property", func() {
		rec := post("/api/v1/things", `{}`)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["error"]).To(Equal("VALIDATION_FAILED"))
		Expect(received).To(BeEmpty())
	})

	It("leaves routes the document does not describe to the mux", func() {
		rec := post("/api/v1/other", `not json`)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(received).To(Equal("not json"))
	})
})
