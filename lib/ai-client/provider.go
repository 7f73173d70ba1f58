package aiclient

import (
	"context"

	aiclientmodels "hr-interview-backend/models/api/aiclient"
)

const (
	ProviderYandexGPT = "yandexgpt"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderLocal     = "local" // детерминированный запасной вариант
)

// ProviderClient - один вызов одного внешнего провайдера генерации,
// без ретраев и без учёта отказов
type ProviderClient interface {
	Name() string
	Generate(ctx context.Context, req aiclientmodels.GenerationRequest) (string, error)
}
