package aiclientmodels

import "time"

// GenerationRequest - запрос на генерацию текста, неизменяемое значение
type GenerationRequest struct {
	Prompt       string  // пользовательский промт
	SystemPrompt string  // system промт
	Structured   bool    // требуется ответ в виде JSON объекта
	Temperature  float32 // 0..1
	MaxTokens    int
	Preferred    string        // приоритетный провайдер, опционально
	CacheTTL     time.Duration // переопределение TTL кеша, 0 - значение по умолчанию
	Kind         string        // тип запроса для журнала ИИ
	RefID        string        // связанная запись (интервью/вакансия) для журнала
}

// GenerationResponse - результат генерации, принадлежит вызывающему
type GenerationResponse struct {
	Text     string        `json:"text"`
	Provider string        `json:"provider"` // имя провайдера, сформировавшего ответ
	Latency  time.Duration `json:"latency"`
	Cached   bool          `json:"cached"`
}
