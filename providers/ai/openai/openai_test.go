package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/docextract/internal/utils"
	"github.com/leofalp/docextract/providers/ai"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p := NewOpenAIProvider()
	p.WithAPIKey("test-key").WithBaseURL(server.URL).WithHttpClient(server.Client())
	return p
}

func TestNewOpenAIProvider_Env(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("OPENAI_API_BASE_URL", "http://localhost:11434/v1")

	p := NewOpenAIProvider()
	if p.apiKey != "env-key" {
		t.Errorf("apiKey = %q", p.apiKey)
	}
	if p.baseURL != "http://localhost:11434/v1" {
		t.Errorf("baseURL = %q", p.baseURL)
	}
}

func TestNewOpenAIProvider_DefaultBaseURL(t *testing.T) {
	t.Setenv("OPENAI_API_BASE_URL", "")
	if p := NewOpenAIProvider(); p.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %q, want %q", p.baseURL, defaultBaseURL)
	}
}

func TestSendMessage_MissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewOpenAIProvider().SendMessage(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestSendMessage(t *testing.T) {
	var got chatCompletionRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != chatCompletionsEndpoint {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-test",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "[{\"a\": 1}, {\"a\""}, "finish_reason": "length"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	})

	resp, err := p.SendMessage(context.Background(), ai.ChatRequest{
		Model:            "gpt-test",
		SystemPrompt:     "be terse",
		Messages:         []ai.Message{ai.UserMessage("extract")},
		GenerationConfig: &ai.GenerationConfig{MaxTokens: 64, Temperature: utils.Ptr(0.0)},
		ResponseFormat:   &ai.ResponseFormat{Type: ai.ResponseFormatJSONObject},
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	wantReq := chatCompletionRequest{
		Model: "gpt-test",
		Messages: []chatMessage{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "extract"},
		},
		Temperature:    utils.Ptr(0.0),
		MaxTokens:      utils.Ptr(64),
		ResponseFormat: &chatResponseFormat{Type: "json_object"},
	}
	if diff := cmp.Diff(wantReq, got); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}

	wantResp := &ai.ChatResponse{
		Id:           "chatcmpl-1",
		Model:        "gpt-test",
		Content:      `[{"a": 1}, {"a"`,
		FinishReason: "length",
		Usage:        &ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
	if diff := cmp.Diff(wantResp, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	if p.IsStopMessage(resp) {
		t.Error("a length-capped reply is not a stop message")
	}
}

func TestSendMessage_HTTPError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	})

	_, err := p.SendMessage(context.Background(), ai.ChatRequest{Model: "m"})
	code, ok := utils.StatusCode(err)
	if !ok || code != http.StatusTooManyRequests {
		t.Fatalf("StatusCode(err) = %d, %v; err = %v", code, ok, err)
	}
}

func TestSendMessage_NoChoices(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"x","model":"m","choices":[]}`))
	})

	resp, err := p.SendMessage(context.Background(), ai.ChatRequest{Model: "m"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if resp.FinishReason != "error" || resp.Content != "" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestIsStopMessage(t *testing.T) {
	p := NewOpenAIProvider()
	tests := []struct {
		msg  *ai.ChatResponse
		want bool
	}{
		{nil, false},
		{&ai.ChatResponse{FinishReason: "stop"}, true},
		{&ai.ChatResponse{FinishReason: "length"}, false},
		{&ai.ChatResponse{FinishReason: "content_filter"}, false},
		{&ai.ChatResponse{}, false},
	}
	for _, tt := range tests {
		if got := p.IsStopMessage(tt.msg); got != tt.want {
			t.Errorf("IsStopMessage(%+v) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}
