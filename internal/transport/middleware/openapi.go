package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/transport"
)

// RequestValidator checks requests against the OpenAPI document before they reach a handler.
type RequestValidator struct {
	router routers.Router
	prefix string
	base   *transport.BaseHandler
}

// NewRequestValidator loads spec. prefix is the mount point the document's paths are relative to.
func NewRequestValidator(ctx context.Context, spec []byte, prefix string, base *transport.BaseHandler) (*RequestValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	// paths are matched after the prefix is stripped
	doc.Servers = nil
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	return &RequestValidator{router: router, prefix: strings.TrimRight(prefix, "/"), base: base}, nil
}

func (v *RequestValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routed := r.Clone(r.Context())
		routed.URL.Path = strings.TrimPrefix(r.URL.Path, v.prefix)
		if routed.URL.Path == "" {
			routed.URL.Path = "/"
		}

		route, params, err := v.router.FindRoute(routed)
		if err != nil {
			// unknown routes and methods are left to the mux
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    routed,
			PathParams: params,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				MultiError:         false,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.base.HandleError(w, toAppError(err))
			return
		}

		// the validator may have consumed and replaced the body
		r.Body = routed.Body
		next.ServeHTTP(w, r)
	})
}

func toAppError(err error) *internal.AppError {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		field := "body"
		if reqErr.Parameter != nil {
			field = reqErr.Parameter.Name
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(err, &schemaErr) && len(schemaErr.JSONPointer()) > 0 {
			field = strings.Join(schemaErr.JSONPointer(), ".")
		}
		reason := reqErr.Reason
		if reason == "" && reqErr.Err != nil {
			reason = reqErr.Err.Error()
		}
		return internal.NewValidationFieldError(field, fmt.Sprintf("%s is invalid: %s", field, reason), internal.ErrCodeValidationFailed).WithCause(err)
	}
	return internal.NewValidationError("request does not match the API description", internal.ErrCodeValidationFailed).WithCause(err)
}
