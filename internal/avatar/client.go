package avatar

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/lazypower/bananimon/internal/config"
)

// Client is the interface for image-generation providers. One call
// yields one image.
type Client interface {
	Generate(ctx context.Context, prompt string, inputs []Image) (*Image, error)
}

// Image is raw image bytes in base64 with their MIME type.
type Image struct {
	MIMEType string
	Data     string // base64, no data: prefix
}

// DataURL renders the image as a data: URL.
func (i Image) DataURL() string {
	return "data:" + i.MIMEType + ";base64," + i.Data
}

// ParseDataURL splits a base64 data: URL. A bare base64 payload is
// accepted and treated as JPEG, which is what browser camera captures
// produce.
func ParseDataURL(s string) (Image, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Image{}, fmt.Errorf("empty image")
	}
	if !strings.HasPrefix(s, "data:") {
		if _, err := base64.StdEncoding.DecodeString(s); err != nil {
			return Image{}, fmt.Errorf("image is neither a data URL nor base64: %w", err)
		}
		return Image{MIMEType: "image/jpeg", Data: s}, nil
	}

	header, data, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return Image{}, fmt.Errorf("malformed data URL")
	}
	mime, enc, _ := strings.Cut(header, ";")
	if enc != "base64" {
		return Image{}, fmt.Errorf("data URL must be base64 encoded")
	}
	if !strings.HasPrefix(mime, "image/") {
		return Image{}, fmt.Errorf("unsupported media type %q", mime)
	}
	return Image{MIMEType: mime, Data: data}, nil
}

// NewClient creates an image client based on the config provider setting.
func NewClient(cfg config.AvatarConfig) (Client, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY or config")
		}
		model := cfg.Model
		if model == "" {
			model = "gemini-2.5-flash-image-preview"
		}
		return NewGemini(cfg.BaseURL, cfg.APIKey, model), nil
	case "mock":
		return NewPlaceholder(), nil
	default:
		return nil, fmt.Errorf("unknown avatar provider: %q", cfg.Provider)
	}
}
