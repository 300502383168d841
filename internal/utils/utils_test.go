package utils

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	t.Run("sets headers and status", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, map[string]string{"key": "value"})

		if got := w.Header().Get("Content-Type"); got != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q; want application/json; charset=utf-8", got)
		}
		if got := w.Header().Get("Cache-Control"); got != "no-store" {
			t.Errorf("Cache-Control = %q; want no-store", got)
		}
		if w.Code != http.StatusOK {
			t.Errorf("Code = %d; want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("encodes body as JSON", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusCreated, map[string]string{"foo": "bar"})

		var got map[string]string
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("body is not valid JSON: %v", err)
		}
		if got["foo"] != "bar" {
			t.Errorf("body[foo] = %q; want bar", got["foo"])
		}
		if w.Code != http.StatusCreated {
			t.Errorf("Code = %d; want %d", w.Code, http.StatusCreated)
		}
	})

	t.Run("unencodable value becomes 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, map[string]float64{"bad": math.Inf(1)})

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Code = %d; want %d", w.Code, http.StatusInternalServerError)
		}
		var got map[string]string
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("body is not valid JSON: %v", err)
		}
		if got["message"] != "failed to encode response" {
			t.Errorf("message = %q", got["message"])
		}
	})
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	status := http.StatusBadGateway
	msg := "forecast provider unavailable"
	WriteError(w, status, msg)

	if w.Code != status {
		t.Errorf("Code = %d; want %d", w.Code, status)
	}

	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if got["error"] != http.StatusText(status) {
		t.Errorf("error = %q; want %q", got["error"], http.StatusText(status))
	}
	if got["message"] != msg {
		t.Errorf("message = %q; want %q", got["message"], msg)
	}
}
