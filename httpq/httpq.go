/*
Adapts the query-string translator to HTTP servers: a gin middleware and a
net/http handler wrapper. Both translate the request's raw query string and
reject untranslatable ones with 400 Bad Request.

Every request gets a correlation ID: the incoming `X-Request-ID` header, or a
random UUID when absent. The ID is echoed in the response header, attached to
log entries, and available to downstream handlers via `ContextRequestID` (gin)
or `RequestIDFromContext` (net/http).
*/
package httpq

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/mitranim/querystr"
	log "github.com/sirupsen/logrus"
)

// Read for log correlation and echoed in the response.
const RequestIDHeader = `X-Request-ID`

const (
	descriptorContextName = `querystr.descriptor`
	requestIDContextName  = `querystr.request_id`
)

type requestIDKey struct{}

// JSON body of rejected requests.
type ErrorBody struct {
	Error string `json:"error"`
}

// Middleware and handler option.
type Option func(*options)

type options struct {
	logger log.FieldLogger
}

/*
Sets the logger used for translation outcomes. Defaults to the standard logrus
logger. Nil is ignored.
*/
func WithLogger(logger log.FieldLogger) Option {
	return func(self *options) {
		if logger != nil {
			self.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	out := options{logger: log.StandardLogger()}
	for _, opt := range opts {
		opt(&out)
	}
	return out
}

/*
Translates the request's query string and stores the descriptor in the gin
context, retrievable via `Descriptor`. On failure, aborts with a JSON
`ErrorBody`.
*/
func Middleware(tr *querystr.Translator, opts ...Option) gin.HandlerFunc {
	cfg := newOptions(opts)

	return func(ctx *gin.Context) {
		id := RequestID(ctx.Request)
		ctx.Set(requestIDContextName, id)
		ctx.Request = ctx.Request.WithContext(withRequestID(ctx.Request.Context(), id))
		ctx.Header(RequestIDHeader, id)

		desc, err := translate(tr, ctx.Request, id, cfg)
		if err != nil {
			status, body := errorResponse(err)
			ctx.Abort()
			JSON(ctx, status, body)
			return
		}
		ctx.Set(descriptorContextName, desc)
		ctx.Next()
	}
}

// Descriptor stored by `Middleware`.
func Descriptor(ctx *gin.Context) (*querystr.Descriptor, bool) {
	val, ok := ctx.Get(descriptorContextName)
	if !ok {
		return nil, false
	}
	desc, ok := val.(*querystr.Descriptor)
	return desc, ok
}

// Request ID stored by `Middleware`, or empty.
func ContextRequestID(ctx *gin.Context) string {
	return ctx.GetString(requestIDContextName)
}

// Request ID stored by `Middleware` or `Handler`, or empty.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// net/http handler receiving the translated descriptor.
type HandlerFunc func(rew http.ResponseWriter, req *http.Request, desc *querystr.Descriptor)

/*
Net/http counterpart of `Middleware`. The request passed to `next` carries the
request ID in its context.
*/
func Handler(tr *querystr.Translator, next HandlerFunc, opts ...Option) http.Handler {
	cfg := newOptions(opts)

	return http.HandlerFunc(func(rew http.ResponseWriter, req *http.Request) {
		id := RequestID(req)
		req = req.WithContext(withRequestID(req.Context(), id))
		rew.Header().Set(RequestIDHeader, id)

		desc, err := translate(tr, req, id, cfg)
		if err != nil {
			status, body := errorResponse(err)
			_ = WriteJSON(rew, status, body)
			return
		}
		next(rew, req, desc)
	})
}

// Writes the value to the gin response, encoded with go-json.
func JSON(ctx *gin.Context, status int, val interface{}) {
	body, err := json.Marshal(val)
	if err != nil {
		ctx.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	ctx.Data(status, `application/json; charset=utf-8`, body)
}

// Writes the value to the response, encoded with go-json.
func WriteJSON(rew http.ResponseWriter, status int, val interface{}) error {
	body, err := json.Marshal(val)
	if err != nil {
		rew.WriteHeader(http.StatusInternalServerError)
		return err
	}
	rew.Header().Set(`Content-Type`, `application/json; charset=utf-8`)
	rew.WriteHeader(status)
	_, err = rew.Write(body)
	return err
}

/*
Correlation ID of the request: the `X-Request-ID` header if present, otherwise
a new random UUID on every call. Prefer `ContextRequestID` or
`RequestIDFromContext` downstream of `Middleware` or `Handler`.
*/
func RequestID(req *http.Request) string {
	if id := req.Header.Get(RequestIDHeader); id != `` {
		return id
	}
	return uuid.NewString()
}

func translate(tr *querystr.Translator, req *http.Request, id string, cfg options) (*querystr.Descriptor, error) {
	start := time.Now()
	desc, err := tr.TranslateQuery(req.URL.RawQuery)
	TranslationDuration.Observe(time.Since(start).Seconds())

	logger := cfg.logger.WithFields(log.Fields{
		`request_id`: id,
		`path`:       req.URL.Path,
	})

	if err != nil {
		TranslationsTotal.WithLabelValues(statusInvalid).Inc()
		logger.WithError(err).Warn(`Rejected query string`)
		return nil, err
	}

	TranslationsTotal.WithLabelValues(statusOK).Inc()
	logger.WithFields(log.Fields{
		`filters`: desc.Where.Len(),
		`limit`:   desc.Limit,
		`offset`:  desc.Offset,
	}).Debug(`Translated query string`)
	return desc, nil
}

func errorResponse(err error) (int, ErrorBody) {
	if querystr.IsParseError(err) {
		return http.StatusBadRequest, ErrorBody{Error: err.Error()}
	}
	return http.StatusInternalServerError, ErrorBody{Error: `internal error`}
}
