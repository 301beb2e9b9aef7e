package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	domainauth "github.com/fieldops/fieldops-api/internal/domain/auth"
	apperrors "github.com/fieldops/fieldops-api/internal/errors"
	"github.com/fieldops/fieldops-api/internal/observability/statsd"
	"github.com/fieldops/fieldops-api/internal/service"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Metrics returns a middleware that records request counts and latency.
// A nil or disabled client makes this a no-op passthrough.
func Metrics(client *statsd.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil || !client.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			tags := map[string]string{
				"method": r.Method,
				"status": strconv.Itoa(ww.status),
			}
			client.Count("http.requests", 1, tags)
			client.Timing("http.duration", time.Since(start), tags)
		})
	}
}

// AuthServiceInterface is the slice of service.AuthService the middleware
// needs. Kept as an interface so tests can substitute doubles.
type AuthServiceInterface interface {
	Authenticate(ctx context.Context, authorizationHeader string) (domainauth.Identity, error)
	ResolveProfile(ctx context.Context, ident domainauth.Identity) (domainauth.AccessProfile, error)
}

// RequireAuth returns a middleware that admits any active, authenticated
// caller regardless of role.
func RequireAuth(authSvc AuthServiceInterface, logger *slog.Logger) func(http.Handler) http.Handler {
	return RequireRole(authSvc, logger)
}

// Pipeline stage names used in failure logs.
const (
	stageVerify    = "verify"
	stageProfile   = "profile"
	stageAuthorize = "authorize"
)

// RequireRole returns a middleware that gates a route on an authenticated
// caller holding one of the allowed roles. With no roles listed, any active
// profile is admitted. The steps run in a fixed order: credential
// verification, profile resolution, then policy evaluation; the first failure
// short-circuits the rest. On success the identity and profile are attached
// to the request context.
func RequireRole(authSvc AuthServiceInterface, logger *slog.Logger, allowed ...domainauth.Role) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, err := authSvc.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				writeAuthError(w, r, logger, authFailure{Stage: stageVerify, Err: err})
				return
			}

			profile, err := authSvc.ResolveProfile(r.Context(), ident)
			if err != nil {
				writeAuthError(w, r, logger, authFailure{Stage: stageProfile, Identity: ident.ID, Err: err})
				return
			}

			if _, err := domainauth.Authorize(profile, allowed...); err != nil {
				writeAuthError(w, r, logger, authFailure{Stage: stageAuthorize, Identity: ident.ID, Err: err})
				return
			}

			ctx := SetIdentityInContext(r.Context(), ident)
			ctx = SetProfileInContext(ctx, profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authFailure carries what is known about a pipeline failure at the point it
// occurred. Identity is empty until credential verification has succeeded.
type authFailure struct {
	Stage    string
	Identity string
	Err      error
}

// writeAuthError maps authentication and authorization failures onto HTTP
// responses and logs them. Credential problems are 401, policy denials are
// 403, and provider or store trouble is 500 so callers don't discard a
// possibly valid credential. The full error chain goes to the log only; 500
// responses carry a sanitized message so upstream provider and store
// internals never reach the client.
func writeAuthError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, f authFailure) {
	var insufficientRole *domainauth.InsufficientRoleError

	var (
		status  int
		errCode string
		public  error
	)
	switch {
	case errors.Is(f.Err, service.ErrMissingCredential):
		status, errCode, public = http.StatusUnauthorized, "missing_credential", f.Err
	case errors.Is(f.Err, service.ErrMalformedCredential):
		status, errCode, public = http.StatusUnauthorized, "malformed_credential", f.Err
	case apperrors.IsUnauthenticated(f.Err):
		status, errCode = http.StatusUnauthorized, "invalid_credential"
		public = errors.New(publicMessage(f.Err, "invalid credential"))
	case errors.Is(f.Err, domainauth.ErrAccountDisabled):
		status, errCode, public = http.StatusForbidden, "account_disabled", f.Err
	case errors.As(f.Err, &insufficientRole):
		status, errCode, public = http.StatusForbidden, "insufficient_role", insufficientRole
	case apperrors.IsUnavailable(f.Err):
		status, errCode = http.StatusInternalServerError, "provider_unavailable"
		public = errors.New(publicMessage(f.Err, "identity provider unavailable"))
	default:
		status, errCode = http.StatusInternalServerError, "profile_error"
		public = errors.New(publicMessage(f.Err, "profile resolution failed"))
	}

	attrs := []any{
		slog.String("stage", f.Stage),
		slog.Int("status", status),
		slog.String("code", errCode),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", f.Err.Error()),
	}
	if f.Identity != "" {
		attrs = append(attrs, slog.String("identity_id", f.Identity))
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "auth pipeline failure", attrs...)
	} else {
		logger.WarnContext(r.Context(), "request denied", attrs...)
	}

	WriteError(w, ErrorParams{Code: status, ErrCode: errCode, Err: public})
}

// publicMessage returns the typed error's own message, never its wrapped
// cause. Errors that carry no AppError fall back to the fixed text.
func publicMessage(err error, fallback string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
