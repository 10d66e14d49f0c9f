package nlu

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const systemPrompt = `
You are वाणी, an offline-first Hindi voice assistant.
The user's words come from a speech recognizer and may contain mistakes.

RULES:
1. Answer in simple spoken Hindi (Devanagari), one or two short sentences.
2. No markdown, lists, emoji, or Latin transliteration.
3. If the request is unclear, politely ask the user to repeat.
4. Never claim to have performed an action on the device.
`

var ErrEmptyAnswer = errors.New("empty answer")

// Completer is the chat completion endpoint of the OpenAI client.
type Completer interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Answerer asks a chat model for a reply when no intent keyword matched.
type Answerer struct {
	api   Completer
	model openai.ChatModel
}

func NewAnswerer(api Completer, model string) *Answerer {
	m := openai.ChatModel(model)
	if m == "" {
		m = openai.ChatModelGPT5Nano
	}
	return &Answerer{api: api, model: m}
}

func NewOpenAI(client openai.Client, model string) *Answerer {
	return NewAnswerer(&client.Chat.Completions, model)
}

func (a *Answerer) Answer(ctx context.Context, transcript string) (string, error) {
	resp, err := a.api.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(transcript),
		},
		Model: a.model,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyAnswer
	}

	log.Debug("Fallback answer", "model", a.model, "answer", content)

	return content, nil
}
