package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mitranim/querystr"
	"github.com/mitranim/querystr/httpq"
	"github.com/mitranim/querystr/internal/config"
	"github.com/mitranim/querystr/sqlrender"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Body of "/sql/:table".
type sqlResponse struct {
	RequestID  string               `json:"requestId"`
	SQL        string               `json:"sql"`
	Args       []interface{}        `json:"args"`
	Descriptor *querystr.Descriptor `json:"descriptor"`
}

func newRouter(cfg config.Config) *gin.Engine {
	ops := querystr.DefaultOperators()
	tr := querystr.New(ops, querystr.WithMaxLimit(cfg.MaxLimit))
	ren := sqlrender.New(ops, nil)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET(`/health`, func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{`status`: `ok`})
	})
	router.GET(`/metrics`, gin.WrapH(promhttp.Handler()))

	translated := router.Group(``)
	translated.Use(httpq.Middleware(tr))

	translated.GET(`/echo`, func(ctx *gin.Context) {
		desc, _ := httpq.Descriptor(ctx)
		httpq.JSON(ctx, http.StatusOK, desc)
	})

	translated.GET(`/sql/:table`, func(ctx *gin.Context) {
		desc, _ := httpq.Descriptor(ctx)
		text, args, err := ren.Render(ctx.Param(`table`), desc)
		if err != nil {
			httpq.JSON(ctx, http.StatusBadRequest, httpq.ErrorBody{Error: err.Error()})
			return
		}
		httpq.JSON(ctx, http.StatusOK, sqlResponse{
			RequestID:  httpq.ContextRequestID(ctx),
			SQL:        text,
			Args:       args,
			Descriptor: desc,
		})
	})

	return router
}
