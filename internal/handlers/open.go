package handlers

import (
	"net/http"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/lichess"
	"github.com/gin-gonic/gin"
)

// HandleOpen analyzes ?image=<url> and sends the browser straight to lichess: a redirect
// for a FEN, an auto-submitting import form otherwise.
func (h *Handler) HandleOpen(c *gin.Context) {
	imageURL := c.Query("image")
	if imageURL == "" {
		h.writeError(c, http.StatusBadRequest, "image query parameter is required", nil)
		return
	}

	payload, info, err := h.processImageURL(c, imageURL)
	if err != nil {
		h.writeError(c, http.StatusBadRequest, "failed to load image", err)
		return
	}

	record := h.analyze(c.Request.Context(), payload, info, c.Query("provider"), c.Query("model"))
	if !record.Success {
		h.writeError(c, apperrors.HTTPStatus(record.Kind), record.Error, record.Err())
		return
	}
	if record.Link == nil {
		h.writeError(c, http.StatusUnprocessableEntity, apperrors.ManualCopyMessage, nil)
		return
	}

	if record.Link.Kind == lichess.KindDirect {
		c.Redirect(http.StatusFound, record.Link.URL)
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := lichess.RenderForm(c.Writer, *record.Link.Form); err != nil {
		h.writeError(c, http.StatusInternalServerError, "failed to render form", err)
	}
}
