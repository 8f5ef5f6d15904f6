package models

import (
	"github.com/boardsnap/boardsnap/internal/analysis"
	"github.com/boardsnap/boardsnap/internal/lichess"
)

// AnalysisRecord is an analysis kept by the HTTP API together with its lichess link
type AnalysisRecord struct {
	analysis.Result
	Image ImageInfo       `json:"image"`
	Link  *lichess.Action `json:"link,omitempty"`
}

// ImageInfo describes the uploaded chessboard image
type ImageInfo struct {
	Source   string `json:"source"` // "upload", "url" or "base64"
	URL      string `json:"url,omitempty"`
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}
