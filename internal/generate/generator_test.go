package generate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// fakeGeminiServer returns a test server that responds with one inline image
// part and an optional text part.
func fakeGeminiServer(t *testing.T, imageBytes []byte, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("server: bad request body: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 1 {
			t.Errorf("server: want single text part, got %+v", req.Contents)
		}

		resp := geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{
					Parts: []geminiPart{
						{InlineData: &geminiBlobData{
							MIMEType: "image/png",
							Data:     base64.StdEncoding.EncodeToString(imageBytes),
						}},
						{Text: text},
					},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGeminiGeneratorGenerate(t *testing.T) {
	imageBytes := []byte{0x89, 'P', 'N', 'G'}
	srv := fakeGeminiServer(t, imageBytes, "a storefront")
	defer srv.Close()

	gen := NewGeminiGenerator("test-key")
	gen.httpClient = srv.Client()
	// Point the client at the fake server via a rewriting transport.
	gen.httpClient.Transport = rewriteHost(srv)

	result, err := gen.Generate(context.Background(), "coffee shop storefront")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if string(result.ImageData) != string(imageBytes) {
		t.Errorf("ImageData = %v, want %v", result.ImageData, imageBytes)
	}
	if result.ImageMIMEType != "image/png" {
		t.Errorf("ImageMIMEType = %q, want image/png", result.ImageMIMEType)
	}
	if result.Text != "a storefront" {
		t.Errorf("Text = %q, want a storefront", result.Text)
	}
}

func TestGeminiGeneratorNoImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := geminiResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{
					Parts: []geminiPart{{Text: "I cannot generate that."}},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	gen := NewGeminiGenerator("test-key")
	gen.httpClient = srv.Client()
	gen.httpClient.Transport = rewriteHost(srv)

	_, err := gen.Generate(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error when no image returned")
	}
	if !strings.Contains(err.Error(), "no image returned") {
		t.Errorf("error = %v, want no-image error", err)
	}
}

func TestGeminiGeneratorAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"code": 429, "message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	gen := NewGeminiGenerator("test-key")
	gen.httpClient = srv.Client()
	gen.httpClient.Transport = rewriteHost(srv)

	_, err := gen.Generate(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error on HTTP 429")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error = %v, want status code surfaced", err)
	}
}

// rewriteHost redirects all requests to the test server regardless of the URL
// the client built.
func rewriteHost(srv *httptest.Server) http.RoundTripper {
	return roundTripFunc(func(r *http.Request) (*http.Response, error) {
		r.URL.Scheme = "http"
		r.URL.Host = strings.TrimPrefix(srv.URL, "http://")
		return http.DefaultTransport.RoundTrip(r)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Errorf("truncateString(short, 10) = %q", got)
	}
	if got := truncateString("abcdefghij", 4); got != "abcd..." {
		t.Errorf("truncateString = %q, want abcd...", got)
	}
}
