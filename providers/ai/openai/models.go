package openai

import (
	"strings"

	"github.com/leofalp/docextract/internal/utils"
	"github.com/leofalp/docextract/providers/ai"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

// chatCompletionRequest represents the /v1/chat/completions request format
type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    *float64            `json:"temperature,omitempty"`
	MaxTokens      *int                `json:"max_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"` // "text", "json_object"
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"` // "chat.completion"
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"` // "stop", "length", "content_filter"
}

type chatResponseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
	Refusal string `json:"refusal,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

/*
	CONVERSION FUNCTIONS
*/

// requestToChatCompletion converts ai.ChatRequest to chat completions format
func requestToChatCompletion(request ai.ChatRequest) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:    request.Model,
		Messages: make([]chatMessage, 0, len(request.Messages)+1),
	}

	if request.SystemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{Role: string(ai.RoleSystem), Content: request.SystemPrompt})
	}
	for _, msg := range request.Messages {
		req.Messages = append(req.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	if cfg := request.GenerationConfig; cfg != nil {
		if cfg.Temperature != nil {
			req.Temperature = utils.Ptr(*cfg.Temperature)
		}
		if cfg.MaxTokens > 0 {
			req.MaxTokens = utils.Ptr(cfg.MaxTokens)
		}
	}

	if request.ResponseFormat != nil && request.ResponseFormat.Type != "" {
		req.ResponseFormat = &chatResponseFormat{Type: request.ResponseFormat.Type}
	}
	return req
}

// chatCompletionToGeneric converts chat completion response to ai.ChatResponse.
// Only the first choice is used. A reply without choices gets the "error"
// finish reason, which the extraction engine treats as a truncation signal.
func chatCompletionToGeneric(resp chatCompletionResponse) *ai.ChatResponse {
	out := &ai.ChatResponse{
		Id:    resp.ID,
		Model: resp.Model,
	}
	if resp.Usage != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	if len(resp.Choices) == 0 {
		out.FinishReason = "error"
		return out
	}

	choice := resp.Choices[0]
	out.Content = cleanThinkTags(choice.Message.Content)
	out.Refusal = choice.Message.Refusal
	out.FinishReason = choice.FinishReason
	return out
}

// cleanThinkTags drops a leading <think>...</think> block some reasoning
// models (DeepSeek, Qwen) put before the answer. A missing end tag means the
// model was cut off while thinking, so the content is returned unchanged.
func cleanThinkTags(content string) string {
	const startTag, endTag = "<think>", "</think>"

	end := strings.Index(content, endTag)
	if end == -1 {
		return content
	}
	start := strings.Index(content[:end], startTag)
	if start == -1 {
		start = 0
	}
	return strings.TrimSpace(content[:start] + content[end+len(endTag):])
}
