package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HandleAnalyses(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.List())
}

func (h *Handler) HandleAnalysisDetail(c *gin.Context) {
	record, ok := h.store.Get(c.Param("id"))
	if !ok {
		h.writeError(c, http.StatusNotFound, "analysis not found", nil)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) HandleAnalysisDelete(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.Get(id); !ok {
		h.writeError(c, http.StatusNotFound, "analysis not found", nil)
		return
	}
	h.store.Delete(id)
	c.Status(http.StatusNoContent)
}
