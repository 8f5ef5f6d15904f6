package dataset

import (
	"path/filepath"
	"strings"
)

// Record is one labelled chessboard image
type Record struct {
	ID        string `json:"id" parquet:"id"`
	ImagePath string `json:"image_path" parquet:"image_path"` // file path relative to the dataset, or an http(s) URL
	FEN       string `json:"fen" parquet:"fen"`               // expected position
}

// ResolveImagePath returns the image location, resolving relative paths against baseDir
func (r *Record) ResolveImagePath(baseDir string) string {
	if r.ImagePath == "" {
		return ""
	}
	if strings.HasPrefix(r.ImagePath, "http://") || strings.HasPrefix(r.ImagePath, "https://") {
		return r.ImagePath
	}
	if filepath.IsAbs(r.ImagePath) {
		return r.ImagePath
	}
	return filepath.Join(baseDir, r.ImagePath)
}
