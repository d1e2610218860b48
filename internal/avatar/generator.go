package avatar

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lazypower/bananimon/internal/logger"
)

var (
	// ErrNoImages is returned when every variant failed.
	ErrNoImages = errors.New("no images generated")
	// ErrBadInput wraps a selfie that could not be decoded.
	ErrBadInput = errors.New("user image")
	// ErrReference wraps a failure to download the animal reference photo.
	ErrReference = errors.New("animal reference")
)

// maxReferenceBytes caps the animal reference download.
const maxReferenceBytes = 10 << 20

// Request describes one avatar generation.
type Request struct {
	UserImage string // data URL or bare base64 selfie
	Animal    string
	Age       string
}

// Result holds the variants that succeeded.
type Result struct {
	Images []string // data URLs
	Prompt string
	Total  int
}

// Generator fans a single request out into parallel variants.
type Generator struct {
	Client   Client
	Variants int
	HTTP     *http.Client
	Log      *logger.Logger

	// ReferenceURL resolves an animal name to its photo. Tests point it
	// at a local server.
	ReferenceURL func(animal string) string
}

// NewGenerator returns a Generator producing variants images per request.
func NewGenerator(client Client, variants int, log *logger.Logger) *Generator {
	if variants <= 0 {
		variants = 4
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{
		Client:       client,
		Variants:     variants,
		HTTP:         &http.Client{Timeout: 30 * time.Second},
		Log:          log,
		ReferenceURL: AnimalImageURL,
	}
}

// Generate runs the variants concurrently. Failed variants are dropped;
// the call only fails when none succeed.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	userImg, err := ParseDataURL(req.UserImage)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	animalImg, err := g.fetchReference(ctx, req.Animal)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReference, err)
	}

	prompt := BuildPrompt(req.Animal, req.Age)
	inputs := []Image{userImg, animalImg}

	images := make([]string, g.Variants)
	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < g.Variants; i++ {
		eg.Go(func() error {
			img, err := g.Client.Generate(egCtx, prompt, inputs)
			if err != nil {
				g.Log.Warn("avatar variant failed", "variant", i, "error", err)
				return nil
			}
			if img == nil || img.Data == "" {
				g.Log.Warn("avatar variant empty", "variant", i)
				return nil
			}
			images[i] = img.DataURL()
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(images))
	for _, img := range images {
		if img != "" {
			out = append(out, img)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoImages
	}
	g.Log.Info("avatar generated", "animal", req.Animal, "variants", len(out), "requested", g.Variants)
	return &Result{Images: out, Prompt: prompt, Total: len(out)}, nil
}

func (g *Generator) fetchReference(ctx context.Context, animal string) (Image, error) {
	url := g.ReferenceURL(animal)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return Image{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := g.HTTP.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReferenceBytes))
	if err != nil {
		return Image{}, fmt.Errorf("read reference: %w", err)
	}

	mime := resp.Header.Get("Content-Type")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	return Image{MIMEType: mime, Data: base64.StdEncoding.EncodeToString(data)}, nil
}
