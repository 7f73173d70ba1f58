package openaiclient

import (
	"context"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	aiclientmodels "hr-interview-backend/models/api/aiclient"
)

type impl struct {
	client *openai.Client
	model  string
}

// NewClient создаёт клиента для OpenAI-совместимого API,
// baseURL пустой - api.openai.com
func NewClient(apiKey, baseURL, model string) *impl {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &impl{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (i impl) Name() string {
	return "openai"
}

func (i impl) Generate(ctx context.Context, req aiclientmodels.GenerationRequest) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	request := openai.ChatCompletionRequest{
		Model:       i.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.Structured {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	response, err := i.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", errors.Wrap(err, "ошибка при отправке запроса на генерацию в OpenAI API")
	}
	if len(response.Choices) == 0 {
		return "", errors.New("пустой ответ OpenAI")
	}
	return response.Choices[0].Message.Content, nil
}
