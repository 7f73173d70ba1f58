package yagptclient

import (
	"context"

	"github.com/pkg/errors"
	yandexgptclient "github.com/sheeiavellie/go-yandexgpt"

	aiclientmodels "hr-interview-backend/models/api/aiclient"
)

type impl struct {
	client    *yandexgptclient.YandexGPTClient
	catalogID string
}

func NewClient(token, catalog string) *impl {
	return &impl{
		client:    yandexgptclient.NewYandexGPTClientWithIAMToken(token),
		catalogID: catalog,
	}
}

func (i impl) Name() string {
	return "yandexgpt"
}

func (i impl) Generate(ctx context.Context, req aiclientmodels.GenerationRequest) (string, error) {
	messages := []yandexgptclient.YandexGPTMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, yandexgptclient.YandexGPTMessage{
			Role: yandexgptclient.YandexGPTMessageRoleSystem,
			Text: req.SystemPrompt,
		})
	}
	messages = append(messages, yandexgptclient.YandexGPTMessage{
		Role: yandexgptclient.YandexGPTMessageRoleUser,
		Text: req.Prompt,
	})

	request := yandexgptclient.YandexGPTRequest{
		ModelURI: yandexgptclient.MakeModelURI(i.catalogID, yandexgptclient.YandexGPTModelLite),
		CompletionOptions: yandexgptclient.YandexGPTCompletionOptions{
			Stream:      false,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		},
		Messages: messages,
	}

	response, err := i.client.CreateRequest(ctx, request)
	if err != nil {
		return "", errors.Wrap(err, "ошибка при отправке запроса на генерацию в API YandexGPT")
	}
	if len(response.Result.Alternatives) == 0 {
		return "", errors.New("пустой ответ YandexGPT")
	}
	return response.Result.Alternatives[0].Message.Text, nil
}
