package handlers

import (
	"net/http"
	"net/url"
	"strings"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/images"
	"github.com/boardsnap/boardsnap/internal/models"
	"github.com/gin-gonic/gin"
)

// AnalyzeRequest is the JSON form of POST /api/analyze
type AnalyzeRequest struct {
	ImageURL    string `json:"image_url"`
	ImageBase64 string `json:"image_base64"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
}

func validateImageURL(imageURL string) error {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewConfigurationError("invalid URL format", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperrors.NewConfigurationError("URL must use http or https", nil)
	}
	if parsed.Host == "" {
		return apperrors.NewConfigurationError("URL must have a valid host", nil)
	}
	return nil
}

// HandleAnalyze accepts a multipart upload (field "image") or a JSON body with an image URL
// or base64 data, and responds with the analysis and its lichess link.
func (h *Handler) HandleAnalyze(c *gin.Context) {
	if strings.Contains(c.ContentType(), "application/json") {
		h.handleJSONAnalyze(c)
		return
	}
	h.handleFileAnalyze(c)
}

func (h *Handler) handleJSONAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeError(c, http.StatusBadRequest, "invalid JSON", err)
		return
	}

	var (
		payload images.Payload
		info    models.ImageInfo
		err     error
	)
	switch {
	case req.ImageURL != "" && req.ImageBase64 != "":
		h.writeError(c, http.StatusBadRequest, "provide only one of image_url and image_base64", nil)
		return
	case req.ImageURL != "":
		payload, info, err = h.processImageURL(c, req.ImageURL)
	case req.ImageBase64 != "":
		payload, info, err = processBase64(req.ImageBase64)
	default:
		h.writeError(c, http.StatusBadRequest, "image_url or image_base64 is required", nil)
		return
	}
	if err != nil {
		h.writeError(c, http.StatusBadRequest, "failed to load image", err)
		return
	}

	h.respondAnalysis(c, h.analyze(c.Request.Context(), payload, info, req.Provider, req.Model))
}

func (h *Handler) handleFileAnalyze(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		header, err = c.FormFile("file")
		if err != nil {
			h.writeError(c, http.StatusBadRequest, "failed to read file", err)
			return
		}
	}

	payload, info, err := h.processUploadedFile(header)
	if err != nil {
		h.writeError(c, http.StatusBadRequest, "failed to load image", err)
		return
	}

	h.respondAnalysis(c, h.analyze(c.Request.Context(), payload, info, c.PostForm("provider"), c.PostForm("model")))
}

func (h *Handler) respondAnalysis(c *gin.Context, record *models.AnalysisRecord) {
	c.JSON(apperrors.HTTPStatus(record.Kind), record)
}
