package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultMIMEType is assumed when the image format cannot be sniffed
const DefaultMIMEType = "image/jpeg"

// Payload is a base64-encoded image without a data-URL prefix
type Payload struct {
	Data     string
	MIMEType string
	Width    int
	Height   int
}

// FromBytes encodes raw image bytes and records the sniffed format
func FromBytes(data []byte) (Payload, error) {
	if len(data) == 0 {
		return Payload{}, fmt.Errorf("image is empty")
	}

	p := Payload{
		Data:     base64.StdEncoding.EncodeToString(data),
		MIMEType: DetectMIMEType(data),
	}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		p.Width, p.Height = cfg.Width, cfg.Height
	}

	return p, nil
}

// FromBase64 accepts base64 image data, with or without a data URL prefix
func FromBase64(encoded string) (Payload, error) {
	encoded = strings.TrimSpace(encoded)
	declared := ""
	if idx := strings.Index(encoded, "base64,"); idx != -1 {
		declared = mimeFromDataURL(encoded[:idx])
		encoded = encoded[idx+len("base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Payload{}, fmt.Errorf("failed to decode base64 image: %w", err)
	}

	p, err := FromBytes(data)
	if err != nil {
		return Payload{}, err
	}
	if p.MIMEType == DefaultMIMEType && declared != "" {
		p.MIMEType = declared
	}
	return p, nil
}

// Empty reports whether the payload carries no image data
func (p Payload) Empty() bool {
	return p.Data == ""
}

// DataURL embeds the image in a data URL for chat/completions requests
func (p Payload) DataURL() string {
	mimeType := p.MIMEType
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, p.Data)
}

// Bytes decodes the payload back to raw image bytes
func (p Payload) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Data)
}

// Format returns the short format name, e.g. "png"
func (p Payload) Format() string {
	mimeType := p.MIMEType
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	return strings.TrimPrefix(mimeType, "image/")
}

// DetectMIMEType sniffs the image format from its header bytes
func DetectMIMEType(data []byte) string {
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return "image/" + format
	}

	if ct := http.DetectContentType(data); strings.HasPrefix(ct, "image/") {
		return ct
	}

	return DefaultMIMEType
}

func mimeFromDataURL(prefix string) string {
	prefix = strings.TrimPrefix(prefix, "data:")
	prefix = strings.TrimSuffix(prefix, ";")
	if strings.HasPrefix(prefix, "image/") {
		return prefix
	}
	return ""
}
