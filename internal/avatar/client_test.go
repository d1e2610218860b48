package avatar

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lazypower/bananimon/internal/config"
)

func TestNewClientGemini(t *testing.T) {
	cfg := config.AvatarConfig{Provider: "gemini", APIKey: "test-key"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	g, ok := client.(*Gemini)
	if !ok {
		t.Fatalf("expected *Gemini, got %T", client)
	}
	if g.model != "gemini-2.5-flash-image-preview" {
		t.Errorf("model = %q", g.model)
	}
	if g.baseURL != geminiAPI {
		t.Errorf("baseURL = %q", g.baseURL)
	}
}

func TestNewClientGeminiMissingKey(t *testing.T) {
	_, err := NewClient(config.AvatarConfig{Provider: "gemini"})
	if err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNewClientMock(t *testing.T) {
	client, err := NewClient(config.AvatarConfig{Provider: "mock"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, ok := client.(*MockClient); !ok {
		t.Errorf("expected *MockClient, got %T", client)
	}
}

func TestNewClientUnknown(t *testing.T) {
	_, err := NewClient(config.AvatarConfig{Provider: "dalle"})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestParseDataURL(t *testing.T) {
	img, err := ParseDataURL("data:image/png;base64,AAAA")
	if err != nil {
		t.Fatalf("ParseDataURL: %v", err)
	}
	if img.MIMEType != "image/png" || img.Data != "AAAA" {
		t.Errorf("got %+v", img)
	}
	if img.DataURL() != "data:image/png;base64,AAAA" {
		t.Errorf("DataURL round trip = %q", img.DataURL())
	}

	bare, err := ParseDataURL("AAAA")
	if err != nil {
		t.Fatalf("bare base64: %v", err)
	}
	if bare.MIMEType != "image/jpeg" {
		t.Errorf("bare mime = %q", bare.MIMEType)
	}

	for _, bad := range []string{"", "data:image/png,AAAA", "data:text/plain;base64,AAAA", "data:image/png;base64", "not base64!"} {
		if _, err := ParseDataURL(bad); err == nil {
			t.Errorf("ParseDataURL(%q) should fail", bad)
		}
	}
}

func TestGeminiGenerate(t *testing.T) {
	var gotKey, gotPath string
	var gotBody struct {
		Contents []geminiContent `json:"contents"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"candidates":[{"content":{"parts":[
			{"text":"here you go"},
			{"inlineData":{"mimeType":"image/png","data":"QUJD"}}
		]}}]}`)
	}))
	defer srv.Close()

	g := NewGemini(srv.URL+"/", "k-123", "img-model")
	img, err := g.Generate(context.Background(), "draw", []Image{{MIMEType: "image/jpeg", Data: "eA=="}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if img.MIMEType != "image/png" || img.Data != "QUJD" {
		t.Errorf("image = %+v", img)
	}
	if gotKey != "k-123" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotPath != "/models/img-model:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected request parts: %+v", gotBody.Contents)
	}
	parts := gotBody.Contents[0].Parts
	if parts[0].Text != "draw" || parts[1].InlineData == nil || parts[1].InlineData.Data != "eA==" {
		t.Errorf("parts = %+v", parts)
	}
}

func TestGeminiGenerateErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		want   string
	}{
		"status":    {http.StatusTooManyRequests, `{"error":"quota"}`, "status 429"},
		"empty":     {http.StatusOK, `{"candidates":[]}`, "no candidates"},
		"textOnly":  {http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`, "no image"},
		"malformed": {http.StatusOK, `{`, "decode response"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := NewGemini(srv.URL, "k", "m").Generate(context.Background(), "p", nil)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Errorf("err = %v, want containing %q", err, tc.want)
			}
		})
	}
}
