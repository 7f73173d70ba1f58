package analysisapimodels

import (
	requirementapimodels "hr-interview-backend/models/api/requirements"
)

type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

type Recommendation string

const (
	RecommendationStrongHire Recommendation = "Strong Hire"
	RecommendationHire       Recommendation = "Hire"
	RecommendationHold       Recommendation = "Hold"
	RecommendationNoHire     Recommendation = "No Hire"
)

// ScoreWithConfidence - оценка компетенции с доверительной меткой
type ScoreWithConfidence struct {
	Name       string          `json:"name"`
	Score      float64         `json:"score"` // 0..100
	Confidence ConfidenceLevel `json:"confidence"`
	Importance string          `json:"importance"` // low/medium/high
	Evidence   []string        `json:"evidence"`
	Percentile float64         `json:"percentile,omitempty"` // относительно бенчмарка
}

// AssessmentResult - итоговый отчёт по завершённому интервью.
// Неизменяем после создания, повторный анализ создаёт новый результат
type AssessmentResult struct {
	InterviewID    string                              `json:"interview_id"`
	Criteria       []ScoreWithConfidence               `json:"criteria"`
	JobFit         requirementapimodels.CoverageMatrix `json:"job_fit"`
	OverallScore   *float64                            `json:"overall_score,omitempty"` // отсутствует, если оценок критериев нет
	RedFlags       []string                            `json:"red_flags"`
	Recommendation Recommendation                      `json:"recommendation"` // как вернула модель, без пересчёта из баллов
	Summary        string                              `json:"summary,omitempty"`
}
