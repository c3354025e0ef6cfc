package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ledgerwatch/log/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sentioxyz/aptos-core/docs"
)

type HealthResponse struct {
	OK bool `json:"ok"`
}

// Healthz godoc
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{OK: true})
}

type RouterOptions struct {
	CacheSize int
	// Status, when set, reports mirror progress for the chains in StoreChains.
	Status      StatusReader
	StoreChains []string
	Logger      log.Logger
}

func NewRouter(svc TraceService, opts RouterOptions) (*gin.Engine, error) {
	if opts.Logger == nil {
		opts.Logger = log.Root()
	}
	traceH, err := newTraceHandler(svc, opts.CacheSize, opts.Logger.New("component", "http"))
	if err != nil {
		return nil, err
	}

	ledgerH := newLedgerHandler(opts.Status, opts.StoreChains)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"*"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/chains", traceH.ListChains)
	r.GET("/:chain_id/call_trace/by_hash/:hash", traceH.CallTraceByHash)
	r.GET("/:chain_id/ledger/status", ledgerH.MirrorStatus)

	return r, nil
}
