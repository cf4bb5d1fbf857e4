package server

import (
	"context"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"
	"net/http"
	"pricewatch/internal/model"
	"runtime/debug"
	"strings"
	"time"
)

type userContextKey struct{}
type userContext struct {
	user model.User
}

type traceContextKey struct{}
type traceContext struct {
	traceID string
}

func setUserContext(ctx context.Context, uc userContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, uc)
}
func getUserContext(ctx context.Context) (userContext, error) {
	uc, ok := ctx.Value(userContextKey{}).(userContext)
	if !ok {
		return uc, errors.New("failed to get UserContext")
	}
	return uc, nil
}

func setTraceContext(ctx context.Context, tc traceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}
func getTraceContext(ctx context.Context) traceContext {
	tc, _ := ctx.Value(traceContextKey{}).(traceContext)
	return tc
}

func (s Server) maxBytesMw(next http.Handler) http.Handler {
	return http.MaxBytesHandler(next, 3000)
}

func (s Server) loggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := uuid.NewString()
		s.Logger.Debugf("loggingMw: New incoming request %s %s from %s, UA: %s, Host: %#v, TraceID: %s",
			r.Method, r.URL.Path, r.RemoteAddr, r.UserAgent(), r.Host, traceID)

		defer func() {
			if re := recover(); re != nil {
				s.Logger.Errorf("loggingMw: Handler crashed, err: %v, TraceID: %s, stack trace:\n%s", re, traceID, debug.Stack())
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		tc := traceContext{traceID: traceID}
		next.ServeHTTP(w, r.WithContext(setTraceContext(r.Context(), tc)))

		s.Logger.Tracef("loggingMw: Incoming request %s %s took %dms, TraceID: %s",
			r.Method, r.URL.Path, time.Since(start).Milliseconds(), traceID)
	})
}

// authMw validates the Bearer session token and loads the subject User into
// the request context. Every failure mode maps to the same 401.
func (s Server) authMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := getTraceContext(r.Context()).traceID
		lt := r.Header.Get("Authorization")
		if strings.HasPrefix(lt, "Bearer ") {
			lt = strings.TrimPrefix(lt, "Bearer ")
			token, err := jwt.Parse([]byte(lt), jwt.WithKey(jwa.HS256, s.AuthSecretKey), jwt.WithValidate(true))
			if err != nil {
				s.Logger.Debugf("authMw: Failed to validate session token, err: %v, TraceID: %s", err, tid)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			u, err := s.DB.UserFindByEmail(r.Context(), token.Subject())
			if err != nil {
				s.Logger.Debugf("authMw: Error finding User from session token, subject: %s, err: %v, TraceID: %s",
					token.Subject(), err, tid)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}

			s.Logger.Debugf("authMw: Authenticated User with email: %s, TraceID: %s", u.Email, tid)
			next.ServeHTTP(w, r.WithContext(setUserContext(r.Context(), userContext{user: u})))
			return
		}
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	})
}
