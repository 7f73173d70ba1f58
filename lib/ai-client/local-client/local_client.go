package localclient

import (
	"context"
	"strings"

	aiclientmodels "hr-interview-backend/models/api/aiclient"
)

// детерминированный локальный генератор - последний ярус цепочки провайдеров.
// Определяет назначение промта по маркерам и возвращает шаблонный ответ,
// ошибок не возвращает никогда
type impl struct{}

func NewClient() *impl {
	return &impl{}
}

func (i impl) Name() string {
	return "local"
}

func (i impl) Generate(ctx context.Context, req aiclientmodels.GenerationRequest) (string, error) {
	prompt := strings.ToLower(req.Prompt + " " + req.SystemPrompt)
	switch {
	case containsAny(prompt, "список требований", "requirements"):
		return `{"requirements":[]}`, nil
	case containsAny(prompt, "оцени компетенции", "по шкале 0-100"):
		return `{"criteria":[]}`, nil
	case containsAny(prompt, "матрицу соответствия", "покрытие требований"):
		return `{"requirements":[]}`, nil
	case containsAny(prompt, "рекомендацию по найму", "strong hire"):
		return `{"recommendation":"Hold","red_flags":[],"summary":"Недостаточно данных для автоматической оценки, требуется ручной разбор."}`, nil
	case containsAny(prompt, "вопрос", "интервью"):
		return "Расскажите, пожалуйста, подробнее о вашем опыте, который относится к ключевым требованиям этой позиции.", nil
	case req.Structured:
		return `{}`, nil
	default:
		return "Расскажите, пожалуйста, подробнее о вашем профессиональном опыте.", nil
	}
}

func containsAny(s string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
