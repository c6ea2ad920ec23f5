package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/tarefa360/tarefa360/internal/activity"
	"github.com/tarefa360/tarefa360/internal/association"
	"github.com/tarefa360/tarefa360/internal/auth"
	"github.com/tarefa360/tarefa360/internal/dashboard"
	"github.com/tarefa360/tarefa360/internal/period"
	"github.com/tarefa360/tarefa360/internal/transport/middleware"
	"github.com/tarefa360/tarefa360/internal/transport/swagger"
	"github.com/tarefa360/tarefa360/internal/user"
)

const APIPrefix = "/api/v1"

// Handlers groups everything the router mounts. Nil handlers leave their routes out.
type Handlers struct {
	Auth        *auth.Handler
	User        *user.Handler
	Association *association.Handler
	Activity    *activity.Handler
	Period      *period.Handler
	Dashboard   *dashboard.Handler
}

type Options struct {
	DB             *sql.DB
	Driver         string
	Spec           []byte
	Validator      *middleware.RequestValidator
	AllowedOrigins []string
	RequestTimeout time.Duration
	AvatarDir      string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(opts.DB, opts.Driver)

	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if opts.Spec != nil {
		router.Get(swagger.SpecPath, swagger.SpecHandler(opts.Spec))
		router.Handle("/swagger/*", swagger.Handler())
	}
	if opts.AvatarDir != "" {
		router.Handle("/avatars/*", http.StripPrefix("/avatars/", http.FileServer(http.Dir(opts.AvatarDir))))
	}

	router.Route(APIPrefix, func(r chi.Router) {
		r.Use(middleware.Timeout(opts.RequestTimeout))
		if h.Auth != nil {
			r.Use(h.Auth.Identify)
		}
		if opts.Validator != nil {
			r.Use(opts.Validator.Middleware)
		}

		r.Get("/health", healthHandler.Check)
		r.Get("/ping", healthHandler.Ping)

		if h.Auth != nil {
			r.Route("/auth", func(ar chi.Router) {
				ar.Post("/login", h.Auth.Login)
				ar.Post("/password", h.Auth.ChangePassword)
			})
		}

		if h.User != nil {
			r.Route("/users", func(ur chi.Router) {
				ur.Get("/", h.User.ListUsers)
				ur.Post("/", h.User.CreateUser)
				ur.Post("/appraisers", h.User.QuickAddAppraiser)
				ur.Get("/me", h.User.GetCurrentUser)
				ur.Put("/me", h.User.UpdateProfile)
				ur.Post("/me/avatar", h.User.UploadAvatar)
				ur.Get("/{id}", h.User.GetUser)
				ur.Put("/{id}", h.User.UpdateUser)
				ur.Delete("/{id}", h.User.DeleteUser)
				if h.Association != nil {
					ur.Get("/{id}/appraiser", h.Association.GetAppraiser)
					ur.Put("/{id}/appraiser", h.Association.ReassignAppraiser)
					ur.Get("/{id}/appraisees", h.Association.GetAppraisees)
				}
			})
		}

		if h.Association != nil {
			r.Route("/associations", func(ar chi.Router) {
				ar.Get("/", h.Association.ListAssociations)
				ar.Post("/", h.Association.CreateAssociation)
				ar.Delete("/{id}", h.Association.DeleteAssociation)
			})
		}

		if h.Activity != nil {
			r.Route("/activities", func(ar chi.Router) {
				ar.Get("/", h.Activity.ListActivities)
				ar.Post("/", h.Activity.CreateActivity)
				ar.Post("/form/check", h.Activity.CheckForm)
				ar.Get("/{id}", h.Activity.GetActivity)
				ar.Put("/{id}", h.Activity.UpdateActivity)
				ar.Delete("/{id}", h.Activity.DeleteActivity)
				ar.Get("/{id}/progress", h.Activity.GetLedger)
				ar.Post("/{id}/progress", h.Activity.AddProgress)
				ar.Delete("/{id}/progress/{year}/{month}", h.Activity.RemoveProgress)
			})
		}

		if h.Period != nil {
			r.Route("/periods", func(pr chi.Router) {
				pr.Get("/", h.Period.GetPeriods)
				pr.Post("/", h.Period.CreatePeriod)
				pr.Get("/active", h.Period.GetActivePeriod)
				pr.Put("/{id}", h.Period.UpdatePeriod)
				pr.Delete("/{id}", h.Period.DeletePeriod)
				pr.Post("/{id}/activate", h.Period.ActivatePeriod)
			})
		}

		if h.Dashboard != nil {
			r.Route("/dashboard", func(dr chi.Router) {
				dr.Get("/admin", h.Dashboard.Admin)
				dr.Get("/appraiser", h.Dashboard.Appraiser)
				dr.Get("/appraisee", h.Dashboard.Appraisee)
			})
		}
	})
}
