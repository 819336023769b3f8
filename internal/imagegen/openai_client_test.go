package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestOpenAIClientGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/images/generations" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		want := map[string]any{
			"model":           "dall-e-3",
			"prompt":          "a cat",
			"size":            "1792x1024",
			"quality":         "hd",
			"response_format": "url",
		}
		for k, v := range want {
			if payload[k] != v {
				t.Fatalf("payload[%s] = %v, want %v", k, payload[k], v)
			}
		}
		if n, _ := payload["n"].(float64); n != 1 {
			t.Fatalf("expected n=1, got %v", payload["n"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[{"url":"https://cdn.example.com/out.png","revised_prompt":"a fluffy cat"}]}`))
	}))
	defer ts.Close()

	client := NewOpenAIClient(OpenAIOptions{APIKey: "test-key", BaseURL: ts.URL + "/v1/"})
	got, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a cat"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if got.URL != "https://cdn.example.com/out.png" {
		t.Fatalf("unexpected url: %s", got.URL)
	}
	if got.RevisedPrompt != "a fluffy cat" {
		t.Fatalf("unexpected revised prompt: %s", got.RevisedPrompt)
	}
}

func TestOpenAIClientSingleAttemptOnFailure(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer ts.Close()

	client := NewOpenAIClient(OpenAIOptions{APIKey: "test-key", BaseURL: ts.URL + "/v1"})
	if _, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a cat"}); err == nil {
		t.Fatalf("expected error from failing provider")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly one provider call, got %d", got)
	}
}

func TestOpenAIClientEmptyData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"created":1,"data":[]}`))
	}))
	defer ts.Close()

	client := NewOpenAIClient(OpenAIOptions{APIKey: "test-key", BaseURL: ts.URL + "/v1"})
	if _, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a cat"}); err == nil {
		t.Fatalf("expected error for empty data")
	}
}

func TestOpenAIClientMissingKey(t *testing.T) {
	client := NewOpenAIClient(OpenAIOptions{})
	if _, err := client.Generate(context.Background(), GenerateRequest{Prompt: "a cat"}); err == nil {
		t.Fatalf("expected error when api key missing")
	}
	if client.Model() != "dall-e-3" {
		t.Fatalf("unexpected default model: %s", client.Model())
	}
}
