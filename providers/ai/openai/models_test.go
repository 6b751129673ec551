package openai

import (
	"testing"

	"github.com/leofalp/docextract/providers/ai"
)

func TestRequestToChatCompletion_Minimal(t *testing.T) {
	req := requestToChatCompletion(ai.ChatRequest{
		Model:            "m",
		Messages:         []ai.Message{ai.UserMessage("hi")},
		GenerationConfig: &ai.GenerationConfig{},
		ResponseFormat:   &ai.ResponseFormat{},
	})

	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Errorf("messages = %+v", req.Messages)
	}
	if req.Temperature != nil || req.MaxTokens != nil {
		t.Error("zero generation config must not set sampling fields")
	}
	if req.ResponseFormat != nil {
		t.Error("empty response format must be omitted")
	}
}

func TestChatCompletionToGeneric_Refusal(t *testing.T) {
	resp := chatCompletionToGeneric(chatCompletionResponse{
		ID: "1",
		Choices: []chatChoice{{
			Message:      chatResponseMessage{Refusal: "I can't help with that."},
			FinishReason: "stop",
		}},
	})
	if resp.Refusal == "" || resp.Content != "" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Usage != nil {
		t.Error("usage must stay nil when the reply has none")
	}
}

func TestCleanThinkTags(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"no tags", `[{"a":1}]`, `[{"a":1}]`},
		{"leading block", "<think>reasoning</think>\n[1]", "[1]"},
		{"end tag only", "reasoning</think> {\"a\":1}", `{"a":1}`},
		{"unterminated", "<think>still going", "<think>still going"},
		{"prefix kept", "note <think>x</think> [2]", "note  [2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanThinkTags(tt.in); got != tt.want {
				t.Errorf("cleanThinkTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
