package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	apperrors "github.com/boardsnap/boardsnap/internal/errors"
	"github.com/boardsnap/boardsnap/internal/images"
	"github.com/boardsnap/boardsnap/internal/models"
	"github.com/gin-gonic/gin"
)

func imageInfo(source string, payload images.Payload) models.ImageInfo {
	return models.ImageInfo{
		Source:   source,
		MIMEType: payload.MIMEType,
		Width:    payload.Width,
		Height:   payload.Height,
	}
}

func (h *Handler) processUploadedFile(header *multipart.FileHeader) (images.Payload, models.ImageInfo, error) {
	file, err := header.Open()
	if err != nil {
		return images.Payload{}, models.ImageInfo{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, images.MaxImageSize+1))
	if err != nil {
		return images.Payload{}, models.ImageInfo{}, fmt.Errorf("failed to read file contents: %w", err)
	}
	if len(data) > images.MaxImageSize {
		return images.Payload{}, models.ImageInfo{}, apperrors.NewConfigurationError("file too large (max 10MB)", nil)
	}

	payload, err := images.FromBytes(data)
	if err != nil {
		return images.Payload{}, models.ImageInfo{}, err
	}

	slog.Info("Image uploaded", "filename", header.Filename, "bytes", len(data), "mime_type", payload.MIMEType)
	return payload, imageInfo("upload", payload), nil
}

func (h *Handler) processImageURL(c *gin.Context, imageURL string) (images.Payload, models.ImageInfo, error) {
	if err := validateImageURL(imageURL); err != nil {
		return images.Payload{}, models.ImageInfo{}, err
	}

	payload, err := h.fetcher.Fetch(c.Request.Context(), imageURL)
	if err != nil {
		return images.Payload{}, models.ImageInfo{}, err
	}

	info := imageInfo("url", payload)
	info.URL = imageURL
	return payload, info, nil
}

func processBase64(encoded string) (images.Payload, models.ImageInfo, error) {
	payload, err := images.FromBase64(encoded)
	if err != nil {
		return images.Payload{}, models.ImageInfo{}, err
	}
	return payload, imageInfo("base64", payload), nil
}
