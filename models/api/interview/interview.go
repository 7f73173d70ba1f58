package interviewapimodels

import (
	"github.com/pkg/errors"

	requirementapimodels "hr-interview-backend/models/api/requirements"
)

// TurnSignals - поведенческие сигналы от фронта, опционально
type TurnSignals struct {
	AnswerDurationSec int  `json:"answer_duration_sec,omitempty"`
	TabSwitched       bool `json:"tab_switched,omitempty"`
}

type NextTurnRequest struct {
	Token   string      `json:"token"`
	Text    string      `json:"text"`
	Signals TurnSignals `json:"signals"`
}

func (r NextTurnRequest) Validate() error {
	if r.Token == "" {
		return errors.New("отсутствует токен интервью")
	}
	return nil
}

// LiveInsights - срез хода интервью, возвращается с каждым вопросом
type LiveInsights struct {
	AskedCount int                                 `json:"asked_count"`
	Coverage   requirementapimodels.CoverageMatrix `json:"coverage,omitempty"`
	WeakSignal bool                                `json:"weak_signal,omitempty"` // слабые ответы, включён режим уточнения
}

// TurnResult - следующий вопрос или решение о завершении
type TurnResult struct {
	Question     string       `json:"question,omitempty"`
	Done         bool         `json:"done"`
	LiveInsights LiveInsights `json:"live_insights"`
}

type CreateInterviewRequest struct {
	VacancyID   string `json:"vacancy_id"`
	ApplicantID string `json:"applicant_id"`
}

func (r CreateInterviewRequest) Validate() error {
	if r.VacancyID == "" {
		return errors.New("отсутствует идентификатор вакансии")
	}
	if r.ApplicantID == "" {
		return errors.New("отсутствует идентификатор кандидата")
	}
	return nil
}

type CreateInterviewResponse struct {
	InterviewID string `json:"interview_id"`
	Token       string `json:"token"` // токен доступа для публичной ссылки кандидата
}
