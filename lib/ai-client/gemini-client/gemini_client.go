package geminiclient

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	aiclientmodels "hr-interview-backend/models/api/aiclient"
)

type impl struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*impl, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "ошибка создания клиента Gemini")
	}
	return &impl{
		client: client,
		model:  model,
	}, nil
}

func (i impl) Name() string {
	return "gemini"
}

func (i impl) Generate(ctx context.Context, req aiclientmodels.GenerationRequest) (string, error) {
	temperature := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}
	if req.Structured {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := i.client.Models.GenerateContent(ctx, i.model, genai.Text(req.Prompt), config)
	if err != nil {
		return "", errors.Wrap(err, "ошибка при отправке запроса на генерацию в API Gemini")
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("пустой ответ Gemini")
	}
	return text, nil
}
