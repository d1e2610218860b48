package avatar

import (
	"context"
	"sync"
)

// placeholderPNG is a 1x1 transparent PNG.
const placeholderPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// MockClient is a test double for the Client interface. It can also be
// used for offline play.
type MockClient struct {
	Image *Image
	Err   error

	mu    sync.Mutex
	Calls []string // records prompts sent
}

// NewPlaceholder returns a MockClient that always yields a blank PNG.
func NewPlaceholder() *MockClient {
	return &MockClient{Image: &Image{MIMEType: "image/png", Data: placeholderPNG}}
}

// Generate records the call and returns the mock image.
func (m *MockClient) Generate(ctx context.Context, prompt string, inputs []Image) (*Image, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, prompt)
	m.mu.Unlock()
	return m.Image, m.Err
}
