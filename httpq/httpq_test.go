package httpq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/mitranim/querystr"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(opts ...Option) *gin.Engine {
	tr := querystr.New(querystr.DefaultOperators(), querystr.WithMaxLimit(50))

	router := gin.New()
	router.GET(`/items`, Middleware(tr, opts...), func(ctx *gin.Context) {
		desc, ok := Descriptor(ctx)
		if !ok {
			ctx.Status(http.StatusTeapot)
			return
		}
		JSON(ctx, http.StatusOK, desc)
	})
	return router
}

func serve(handler http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func counterValue(t testing.TB, counter prometheus.Counter) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, counter.Write(&out))
	return out.GetCounter().GetValue()
}

func TestMiddleware(t *testing.T) {
	router := newTestRouter()

	t.Run(`translated`, func(t *testing.T) {
		rec := serve(router, `/items?b=gt:1&a=x&limit=10&offset=3`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `application/json; charset=utf-8`, rec.Header().Get(`Content-Type`))
		assert.JSONEq(t,
			`{"where":{"b":{"$gt":"1"},"a":"x"},"limit":10,"offset":30}`,
			rec.Body.String(),
		)
	})

	t.Run(`max limit`, func(t *testing.T) {
		rec := serve(router, `/items?limit=500`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"where":{},"limit":50,"offset":0}`, rec.Body.String())
	})

	t.Run(`bare percent`, func(t *testing.T) {
		rec := serve(router, `/items?firstName=like:Reza%`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`{"where":{"firstName":{"$like":"Reza%"}},"limit":50,"offset":0}`,
			rec.Body.String(),
		)
	})

	t.Run(`rejected`, func(t *testing.T) {
		before := counterValue(t, TranslationsTotal.WithLabelValues(statusInvalid))

		rec := serve(router, `/items?query=%7Bnope`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var body ErrorBody
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.Error, `"query"`)

		after := counterValue(t, TranslationsTotal.WithLabelValues(statusInvalid))
		assert.Equal(t, before+1, after)
	})
}

func TestMiddlewareLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	router := newTestRouter(WithLogger(logger))

	req := httptest.NewRequest(http.MethodGet, `/items?limit=abc`, nil)
	req.Header.Set(RequestIDHeader, `req-1`)
	router.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.WarnLevel, entry.Level)
	assert.Equal(t, `req-1`, entry.Data[`request_id`])
	assert.Equal(t, `/items`, entry.Data[`path`])
	assert.True(t, querystr.IsParseError(entry.Data[log.ErrorKey].(error)))

	hook.Reset()
	serve(router, `/items?a=1`)

	entry = hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.DebugLevel, entry.Level)
	assert.Equal(t, 1, entry.Data[`filters`])
	assert.NotEmpty(t, entry.Data[`request_id`])
}

func TestHandler(t *testing.T) {
	tr := querystr.New(querystr.DefaultOperators())
	handler := Handler(tr, func(rew http.ResponseWriter, _ *http.Request, desc *querystr.Descriptor) {
		_ = WriteJSON(rew, http.StatusOK, map[string]int{`limit`: desc.Limit, `offset`: desc.Offset})
	})

	rec := serve(handler, `/?limit=20&offset=1`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"limit":20,"offset":20}`, rec.Body.String())

	rec = serve(handler, `/?offset=x`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `application/json; charset=utf-8`, rec.Header().Get(`Content-Type`))
}

func TestMiddlewareRequestID(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	var fromGin, fromRequest string
	router := gin.New()
	router.GET(`/items`, Middleware(querystr.New(querystr.DefaultOperators()), WithLogger(logger)), func(ctx *gin.Context) {
		fromGin = ContextRequestID(ctx)
		fromRequest = RequestIDFromContext(ctx.Request.Context())
		ctx.Status(http.StatusNoContent)
	})

	t.Run(`incoming`, func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, `/items?a=1`, nil)
		req.Header.Set(RequestIDHeader, `req-2`)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, `req-2`, rec.Header().Get(RequestIDHeader))
		assert.Equal(t, `req-2`, fromGin)
		assert.Equal(t, `req-2`, fromRequest)
	})

	t.Run(`generated`, func(t *testing.T) {
		hook.Reset()
		rec := serve(router, `/items?a=1`)

		id := rec.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)
		assert.Equal(t, id, fromGin)
		assert.Equal(t, id, fromRequest)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, id, entry.Data[`request_id`])
	})

	t.Run(`rejected`, func(t *testing.T) {
		hook.Reset()
		rec := serve(router, `/items?limit=x`)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		id := rec.Header().Get(RequestIDHeader)
		require.NotEmpty(t, id)

		entry := hook.LastEntry()
		require.NotNil(t, entry)
		assert.Equal(t, id, entry.Data[`request_id`])
	})
}

func TestHandlerRequestID(t *testing.T) {
	var fromRequest string
	handler := Handler(querystr.New(querystr.DefaultOperators()), func(rew http.ResponseWriter, req *http.Request, _ *querystr.Descriptor) {
		fromRequest = RequestIDFromContext(req.Context())
		rew.WriteHeader(http.StatusNoContent)
	})

	rec := serve(handler, `/?a=1`)
	id := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id, fromRequest)

	rec = serve(handler, `/?limit=x`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, `/`, nil)
	first, second := RequestID(req), RequestID(req)
	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)

	req.Header.Set(RequestIDHeader, `fixed`)
	assert.Equal(t, `fixed`, RequestID(req))

	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestErrorResponse(t *testing.T) {
	status, body := errorResponse(&querystr.ParseError{Param: `limit`, Err: assert.AnError})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body.Error, `limit`)

	status, body = errorResponse(assert.AnError)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, `internal error`, body.Error)
}
