package handlers

import (
	"net/http"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/gin-gonic/gin"
)

// LinkRequest is the body of POST /api/link
type LinkRequest struct {
	PGN string `json:"pgn"`
}

// HandleLink returns the lichess action for a PGN without opening anything
func (h *Handler) HandleLink(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, http.StatusBadRequest, "invalid JSON", err)
		return
	}

	action, err := h.links.Build(req.PGN)
	if err != nil {
		h.writeError(c, apperrors.HTTPStatus(apperrors.KindOf(err)), apperrors.ManualCopyMessage, err)
		return
	}

	c.JSON(http.StatusOK, action)
}
