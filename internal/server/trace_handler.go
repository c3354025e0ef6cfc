package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ledgerwatch/log/v3"

	"github.com/sentioxyz/aptos-core/internal/metrics"
	"github.com/sentioxyz/aptos-core/internal/tracer"
)

// TraceService is what the handlers need from tracer.Service.
type TraceService interface {
	Trace(ctx context.Context, chainID, hash string) (*tracer.TraceResult, error)
	Chains() []string
}

type traceHandler struct {
	svc    TraceService
	cache  *lru.Cache[string, *tracer.TraceResult]
	logger log.Logger
}

func newTraceHandler(svc TraceService, cacheSize int, logger log.Logger) (*traceHandler, error) {
	h := &traceHandler{svc: svc, logger: logger}
	if cacheSize > 0 {
		cache, err := lru.New[string, *tracer.TraceResult](cacheSize)
		if err != nil {
			return nil, err
		}
		h.cache = cache
	}
	return h, nil
}

// CallTraceByHash godoc
// @Summary Source attributed call trace of a committed transaction
// @Tags Trace
// @Produce json
// @Param chain_id path string true "Chain ID"
// @Param hash path string true "Transaction hash, 32 bytes hex"
// @Success 200 {object} tracer.TraceResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /{chain_id}/call_trace/by_hash/{hash} [get]
func (h *traceHandler) CallTraceByHash(c *gin.Context) {
	chainID := c.Param("chain_id")
	hash, err := tracer.ParseHash(c.Param("hash"))
	if err != nil {
		writeAPIError(c, http.StatusBadRequest, err.Error())
		return
	}

	key := chainID + ":" + hash
	if h.cache != nil {
		if res, ok := h.cache.Get(key); ok {
			metrics.ResultCacheHits.Inc()
			c.JSON(http.StatusOK, res)
			return
		}
	}

	res, err := h.svc.Trace(c.Request.Context(), chainID, hash)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Warn("Trace failed", "chain", chainID, "hash", hash, "err", err)
		}
		writeAPIError(c, status, err.Error())
		return
	}
	if h.cache != nil {
		h.cache.Add(key, res)
	}
	c.JSON(http.StatusOK, res)
}

type ChainsResponse struct {
	Chains []string `json:"chains"`
}

// ListChains godoc
// @Summary List chains served by this tracer
// @Tags Trace
// @Produce json
// @Success 200 {object} ChainsResponse
// @Router /chains [get]
func (h *traceHandler) ListChains(c *gin.Context) {
	c.JSON(http.StatusOK, ChainsResponse{Chains: h.svc.Chains()})
}
