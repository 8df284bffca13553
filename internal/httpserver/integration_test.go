//go:build integration

package httpserver

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

////////////////////////////////////////////////////////////////////////////////
// INTEGRATION TEST SUITE
//
// These tests drive a running service end-to-end:
//
//   Client → HTTP API → Image host → Store → Response
//
// Start the service first (for example via docker compose, with
// IMAGE_HOST=memory when no Cloudinary account is available), then:
//
//   go test -tags integration ./internal/httpserver/
//
// Optional environment overrides:
//
//   BASE_URL default http://localhost:8080
//
////////////////////////////////////////////////////////////////////////////////

// onePixelPNG is a valid 1x1 PNG accepted by real image hosts.
var onePixelPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func baseURL() string {
	if v := os.Getenv("BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// unique generates a title that never collides with previous runs.
func unique(prefix string) string {
	return fmt.Sprintf("%s %d", prefix, time.Now().UnixNano())
}

// waitReady polls /ready until the store is reachable.
func waitReady(t *testing.T) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(30 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL() + "/ready")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(300 * time.Millisecond)
	}

	t.Fatalf("service not ready after 30s")
}

func httpGet(t *testing.T, path string) (int, []byte) {
	t.Helper()

	resp, err := (&http.Client{Timeout: 5 * time.Second}).Get(baseURL() + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func createEvent(t *testing.T, title string, image []byte) (int, []byte) {
	t.Helper()

	body, contentType := multipartEvent(t, title, image)
	resp, err := (&http.Client{Timeout: 30 * time.Second}).Post(baseURL()+"/api/events", contentType, body)
	if err != nil {
		t.Fatalf("POST /api/events failed: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

type listBody struct {
	Events []struct {
		Title string `json:"title"`
		Mode  string `json:"mode"`
	} `json:"events"`
}

////////////////////////////////////////////////////////////////////////////////
// HEALTH & READINESS
////////////////////////////////////////////////////////////////////////////////

func TestIntegration_HealthAndReady(t *testing.T) {
	if s, _ := httpGet(t, "/health"); s != http.StatusOK {
		t.Fatalf("health expected 200 got %d", s)
	}
	waitReady(t)
}

////////////////////////////////////////////////////////////////////////////////
// EVENT CONTRACT
////////////////////////////////////////////////////////////////////////////////

func TestIntegration_DuplicateTitleConflicts(t *testing.T) {
	waitReady(t)

	title := unique("Dup Conf")
	if s, b := createEvent(t, title, onePixelPNG); s != http.StatusCreated {
		t.Fatalf("first create expected 201 got %d: %s", s, b)
	}
	if s, _ := createEvent(t, title, onePixelPNG); s != http.StatusConflict {
		t.Fatalf("second create expected 409 got %d", s)
	}
}

func TestIntegration_MissingImageRejected(t *testing.T) {
	waitReady(t)

	if s, _ := createEvent(t, unique("No Image"), []byte{}); s != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", s)
	}
}

func TestIntegration_ListIsNewestFirst(t *testing.T) {
	waitReady(t)

	older := unique("Older Conf")
	if s, b := createEvent(t, older, onePixelPNG); s != http.StatusCreated {
		t.Fatalf("create expected 201 got %d: %s", s, b)
	}
	time.Sleep(20 * time.Millisecond)
	newer := unique("Newer Conf")
	if s, b := createEvent(t, newer, onePixelPNG); s != http.StatusCreated {
		t.Fatalf("create expected 201 got %d: %s", s, b)
	}

	s, b := httpGet(t, "/api/events")
	if s != http.StatusOK {
		t.Fatalf("list expected 200 got %d", s)
	}
	var out listBody
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("invalid list JSON: %v", err)
	}

	pos := map[string]int{}
	for i, ev := range out.Events {
		pos[ev.Title] = i
		if ev.Title == newer && ev.Mode != "hybrid" {
			t.Fatalf("expected stored mode hybrid, got %q", ev.Mode)
		}
	}
	pn, okN := pos[newer]
	po, okO := pos[older]
	if !okN || !okO || pn > po {
		t.Fatalf("expected %q before %q, got positions %d/%d", newer, older, pn, po)
	}
}
