package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"go.uber.org/zap"
)

// handle binds the JSON body to Req, runs fn and writes either its response
// or the error object. Every failure is answered with status 500.
func handle[Req any, Resp any](s *Server, fn func(context.Context, *Req) (*Resp, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req Req
		if err := ctx.ShouldBindJSON(&req); err != nil {
			s.logger.Debug("bind request", zap.String("path", ctx.FullPath()), zap.Error(err))
			ctx.JSON(http.StatusInternalServerError, apierr.NonRetriable("invalid request: %v", err))
			return
		}

		resp, err := fn(ctx.Request.Context(), &req)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, apierr.From(err))
			return
		}
		ctx.JSON(http.StatusOK, resp)
	}
}
