package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wx-shi/rosetta-utxo/internal/config"
	"github.com/wx-shi/rosetta-utxo/internal/construction"
	"github.com/wx-shi/rosetta-utxo/internal/network"
	"github.com/wx-shi/rosetta-utxo/internal/query"
	"github.com/wx-shi/rosetta-utxo/pkg"
	"go.uber.org/zap"
)

const (
	// readTimeout is the maximum duration for reading the entire
	// request, including the body.
	readTimeout = time.Minute

	// writeTimeout covers the slowest handler, a balance read that
	// waits for the confirmed milestone to settle.
	writeTimeout = 2 * time.Minute

	// idleTimeout is the maximum amount of time to wait for the
	// next request when keep-alives are enabled.
	idleTimeout = 5 * time.Minute
)

type Server struct {
	conf         *config.ServerConfig
	logger       *zap.Logger
	construction *construction.Service
	query        *query.Service
	network      *network.Service
	engine       *gin.Engine
	hs           *http.Server
}

func NewServer(conf *config.ServerConfig, logger *zap.Logger,
	cs *construction.Service, qs *query.Service, ns *network.Service) *Server {

	s := &Server{
		conf:         conf,
		logger:       logger,
		construction: cs,
		query:        qs,
		network:      ns,
	}

	s.initGin()
	return s
}

func (s *Server) initGin() {
	gin.SetMode(gin.ReleaseMode)
	if err := registerValidators(); err != nil {
		s.logger.Fatal("register validators", zap.Error(err))
	}

	engine := gin.New()
	engine.Use(pkg.LogMiddleware(s.logger), pkg.CORSMiddleware(), gin.Recovery())

	nw := engine.Group("/network")
	nw.POST("/list", handle(s, s.network.List))
	nw.POST("/options", handle(s, s.network.Options))
	nw.POST("/status", handle(s, s.network.Status))

	account := engine.Group("/account")
	account.POST("/balance", handle(s, s.query.AccountBalance))
	account.POST("/coins", handle(s, s.query.AccountCoins))

	cons := engine.Group("/construction")
	cons.POST("/derive", handle(s, s.construction.Derive))
	cons.POST("/preprocess", handle(s, s.construction.Preprocess))
	cons.POST("/metadata", handle(s, s.construction.Metadata))
	cons.POST("/payloads", handle(s, s.construction.Payloads))
	cons.POST("/combine", handle(s, s.construction.Combine))
	cons.POST("/hash", handle(s, s.construction.Hash))
	cons.POST("/submit", handle(s, s.construction.Submit))
	cons.POST("/parse", handle(s, s.construction.Parse))

	s.engine = engine
}

func (s *Server) Run() {
	addr := fmt.Sprintf("%s:%d", s.conf.Host, s.conf.Port)
	hs := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	s.hs = hs

	go func() {
		if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("listen", zap.Error(err))
		}
	}()
	s.logger.Info("listen", zap.String("addr", addr))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.hs.Shutdown(ctx)
}
