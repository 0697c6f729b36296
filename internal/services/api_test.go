package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIService(t *testing.T) {
	ctx := context.Background()

	t.Run("Get", func(t *testing.T) {
		t.Run("decodes JSON responses", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" || r.Method != http.MethodGet {
					t.Errorf("expected GET /health, got %s %s", r.Method, r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			}))
			defer server.Close()

			api := NewAPIService(server.URL, nil)
			resp, err := api.Get(ctx, "/health")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected IsJSON to be true")
			}
			data, ok := resp.JSONData.(map[string]any)
			if !ok || data["status"] != "ok" {
				t.Errorf("unexpected JSONData %+v", resp.JSONData)
			}
		})

		t.Run("non-JSON bodies keep the raw bytes", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, "plain text")
			}))
			defer server.Close()

			api := NewAPIService(server.URL, nil)
			resp, err := api.Get(ctx, "/raw")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON {
				t.Error("expected IsJSON to be false")
			}
			if string(resp.Body) != "plain text" {
				t.Errorf("unexpected body %q", resp.Body)
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON content type, got %s", ct)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != `{"key":"value"}` {
				t.Errorf("unexpected body %q", body)
			}
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		api := NewAPIService(server.URL, nil)
		resp, err := api.Post(ctx, "/things", []byte(`{"key":"value"}`))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("expected 201, got %d", resp.StatusCode)
		}
	})

	t.Run("SetupBrowser", func(t *testing.T) {
		t.Run("wraps headers and decodes the reply", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth/setup-browser" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}

				var req map[string]string
				json.NewDecoder(r.Body).Decode(&req)
				if req["headers_raw"] != "cookie: SID=abc" {
					t.Errorf("unexpected headers_raw %q", req["headers_raw"])
				}

				json.NewEncoder(w).Encode(map[string]any{
					"success":      true,
					"message":      "browser auth configured",
					"auth_content": map[string]string{"cookie": "SID=abc"},
				})
			}))
			defer server.Close()

			api := NewAPIService(server.URL, nil)
			resp, err := api.SetupBrowser(ctx, "cookie: SID=abc")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.Success {
				t.Error("expected success")
			}
			if resp.AuthContent == nil {
				t.Error("expected auth content")
			}
		})

		t.Run("proxy failure is surfaced", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "bad headers"})
			}))
			defer server.Close()

			api := NewAPIService(server.URL, nil)
			resp, err := api.SetupBrowser(ctx, "garbage")
			if err != nil {
				t.Fatalf("expected no transport error, got %v", err)
			}
			if resp.Success {
				t.Error("expected failure to be reported")
			}
		})
	})
}
