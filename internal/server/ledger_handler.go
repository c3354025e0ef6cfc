package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sentioxyz/aptos-core/internal/mirror"
)

type StatusReader interface {
	Status(ctx context.Context, chainID string) (*mirror.Status, error)
}

type ledgerHandler struct {
	reader StatusReader
	chains map[string]bool
}

func newLedgerHandler(reader StatusReader, chains []string) *ledgerHandler {
	h := &ledgerHandler{reader: reader, chains: make(map[string]bool, len(chains))}
	for _, id := range chains {
		h.chains[id] = true
	}
	return h
}

// MirrorStatus godoc
// @Summary Mirror progress of a store backed chain
// @Tags Ledger
// @Produce json
// @Param chain_id path string true "Chain ID"
// @Success 200 {object} mirror.Status
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /{chain_id}/ledger/status [get]
func (h *ledgerHandler) MirrorStatus(c *gin.Context) {
	chainID := c.Param("chain_id")
	if h.reader == nil || !h.chains[chainID] {
		writeAPIError(c, http.StatusNotFound, "chain is not served from the local store")
		return
	}
	st, err := h.reader.Status(c.Request.Context(), chainID)
	if err != nil {
		writeAPIError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, st)
}
