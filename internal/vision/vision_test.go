package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClassifyReturnsSuggestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Image != "img-123" {
			t.Errorf("unexpected request: %+v err=%v", req, err)
		}
		_ = json.NewEncoder(w).Encode(classifyResponse{Item: "bottled drink", Amount: 1.50})
	}))
	defer srv.Close()

	c := NewHTTPClassifier(srv.URL)
	sug, err := c.Classify(context.Background(), "img-123")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if sug == nil || sug.Item != "bottled drink" || sug.Amount.Cents != 150 {
		t.Fatalf("unexpected suggestion: %+v", sug)
	}
}

func TestClassifyNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sug, err := NewHTTPClassifier(srv.URL).Classify(context.Background(), "img")
	if err != nil || sug != nil {
		t.Fatalf("expected nil suggestion, got %+v err=%v", sug, err)
	}
}

func TestClassifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewHTTPClassifier(srv.URL).Classify(context.Background(), "img"); err == nil {
		t.Fatalf("expected error on 500")
	}
}
