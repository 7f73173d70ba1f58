package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/sync/errgroup"

	"hr-interview-backend/config"
	"hr-interview-backend/db"
	aiclient "hr-interview-backend/lib/ai-client"
	assessmentstore "hr-interview-backend/lib/analysis/assessment-store"
	sessionstore "hr-interview-backend/lib/interview/session-store"
	"hr-interview-backend/lib/requirements"
	aiclientmodels "hr-interview-backend/models/api/aiclient"
	analysisapimodels "hr-interview-backend/models/api/analysis"
	requirementapimodels "hr-interview-backend/models/api/requirements"
	dbmodels "hr-interview-backend/models/db"
)

var ErrInterviewNotFound = errors.New("интервью не найдено")

const (
	transcriptLimit = 12000
	resumeLimit     = 6000
)

// Три прохода анализа выполняются параллельно и деградируют независимо:
// отказ одного прохода не отменяет остальные, отчёт собирается из того, что есть
type Provider interface {
	// Analyze строит отчёт по завершённому интервью и переводит его в статус analyzed
	Analyze(ctx context.Context, interviewID string) (*analysisapimodels.AssessmentResult, error)
	// GetAssessment возвращает сохранённый отчёт, nil при отсутствии
	GetAssessment(interviewID string) (*analysisapimodels.AssessmentResult, error)
}

var Instance Provider

func NewHandler() {
	Instance = &impl{
		ai:              aiclient.Instance,
		requirements:    requirements.Instance,
		sessionStore:    sessionstore.NewInstance(db.DB),
		assessmentStore: assessmentstore.NewInstance(db.DB),
		passTimeout:     time.Duration(config.Conf.AI.Timeout.AnalysisSec) * time.Second,
	}
}

type impl struct {
	ai              aiclient.Provider
	requirements    requirements.Provider
	sessionStore    sessionstore.Provider
	assessmentStore assessmentstore.Provider
	passTimeout     time.Duration
}

func (i impl) getLogger(interviewID string) *log.Entry {
	return log.WithField("interview_id", interviewID)
}

func (i impl) GetAssessment(interviewID string) (*analysisapimodels.AssessmentResult, error) {
	rec, err := i.assessmentStore.GetByInterviewID(interviewID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения отчёта")
	}
	if rec == nil {
		return nil, nil
	}
	result := analysisapimodels.AssessmentResult(rec.Payload)
	return &result, nil
}

func (i impl) Analyze(ctx context.Context, interviewID string) (*analysisapimodels.AssessmentResult, error) {
	logger := i.getLogger(interviewID)

	rec, err := i.sessionStore.GetInterview(interviewID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения интервью")
	}
	if rec == nil {
		return nil, ErrInterviewNotFound
	}
	turns, err := i.sessionStore.LoadTurns(interviewID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения стенограммы")
	}
	transcript := truncate(fullTranscript(turns), transcriptLimit)

	items, err := i.requirements.GetForVacancy(ctx, rec.Vacancy)
	if err != nil {
		logger.WithError(err).Warn("ошибка получения требований вакансии")
		items = []requirementapimodels.RequirementItem{}
	}

	var (
		criteria       []analysisapimodels.ScoreWithConfidence
		jobFit         requirementapimodels.CoverageMatrix
		recommendation analysisapimodels.Recommendation
		redFlags       []string
		summary        string
	)
	var g errgroup.Group
	g.Go(func() error {
		passCtx, cancel := context.WithTimeout(ctx, i.passTimeout)
		defer cancel()
		scores, err := i.scoreCriteria(passCtx, rec, items, transcript)
		if err != nil {
			logger.WithError(err).Warn("ошибка оценки компетенций")
			return nil
		}
		criteria = scores
		return nil
	})
	g.Go(func() error {
		passCtx, cancel := context.WithTimeout(ctx, i.passTimeout)
		defer cancel()
		matrix, err := i.buildJobFit(passCtx, rec, items, transcript)
		if err != nil {
			logger.WithError(err).Warn("ошибка построения матрицы соответствия")
			return nil
		}
		jobFit = matrix
		return nil
	})
	g.Go(func() error {
		passCtx, cancel := context.WithTimeout(ctx, i.passTimeout)
		defer cancel()
		verdict, err := i.decideHiring(passCtx, rec, transcript)
		if err != nil {
			logger.WithError(err).Warn("ошибка формирования рекомендации")
			return nil
		}
		recommendation = verdict.Recommendation
		redFlags = verdict.RedFlags
		summary = verdict.Summary
		return nil
	})
	_ = g.Wait()

	if jobFit == nil {
		jobFit = requirementapimodels.CoverageMatrix{}
	}
	if redFlags == nil {
		redFlags = []string{}
	}
	if recommendation == "" {
		recommendation = analysisapimodels.RecommendationHold
	}

	result := analysisapimodels.AssessmentResult{
		InterviewID:    interviewID,
		Criteria:       criteria,
		JobFit:         jobFit,
		OverallScore:   meanScore(criteria),
		RedFlags:       redFlags,
		Recommendation: recommendation,
		Summary:        summary,
	}

	_, err = i.assessmentStore.Save(dbmodels.Assessment{
		InterviewID: interviewID,
		Payload:     dbmodels.AssessmentPayload(result),
	})
	if err != nil {
		return nil, errors.Wrap(err, "ошибка сохранения отчёта")
	}

	rec.Coverage = dbmodels.CoverageColumn(i.requirements.UpdateCoverage(
		requirementapimodels.CoverageMatrix(rec.Coverage),
		jobFit,
	))
	rec.Status = dbmodels.InterviewAnalyzed
	if _, err := i.sessionStore.SaveInterview(*rec); err != nil {
		return nil, errors.Wrap(err, "ошибка сохранения интервью")
	}
	logger.WithField("criteria", len(criteria)).Info("анализ интервью завершён")
	return &result, nil
}

func (i impl) scoreCriteria(ctx context.Context, rec *dbmodels.Interview, items []requirementapimodels.RequirementItem, transcript string) ([]analysisapimodels.ScoreWithConfidence, error) {
	resp, err := i.ai.Generate(ctx, aiclientmodels.GenerationRequest{
		SystemPrompt: criteriaSystemPrompt,
		Prompt: fmt.Sprintf(criteriaPromptPattern,
			rec.Vacancy.JobTitle,
			requirementLines(items),
			transcript,
		),
		Structured: true,
		Kind:       string(dbmodels.AiCriteriaScoringType),
		RefID:      rec.ID,
	})
	if err != nil {
		return nil, err
	}
	return parseCriteria(resp.Text)
}

func (i impl) buildJobFit(ctx context.Context, rec *dbmodels.Interview, items []requirementapimodels.RequirementItem, transcript string) (requirementapimodels.CoverageMatrix, error) {
	resp, err := i.ai.Generate(ctx, aiclientmodels.GenerationRequest{
		SystemPrompt: jobFitSystemPrompt,
		Prompt: fmt.Sprintf(jobFitPromptPattern,
			rec.Vacancy.JobTitle,
			requirementLines(items),
			truncate(rec.Applicant.ResumeText, resumeLimit),
			transcript,
		),
		Structured: true,
		Kind:       string(dbmodels.AiJobFitMatrixType),
		RefID:      rec.ID,
	})
	if err != nil {
		return nil, err
	}
	return parseJobFit(resp.Text)
}

type hiringVerdict struct {
	Recommendation analysisapimodels.Recommendation `json:"recommendation"`
	RedFlags       []string                         `json:"red_flags"`
	Summary        string                           `json:"summary"`
}

func (i impl) decideHiring(ctx context.Context, rec *dbmodels.Interview, transcript string) (hiringVerdict, error) {
	resp, err := i.ai.Generate(ctx, aiclientmodels.GenerationRequest{
		SystemPrompt: decisionSystemPrompt,
		Prompt: fmt.Sprintf(decisionPromptPattern,
			rec.Vacancy.JobTitle,
			transcript,
		),
		Structured: true,
		Kind:       string(dbmodels.AiHiringDecisionType),
		RefID:      rec.ID,
	})
	if err != nil {
		return hiringVerdict{}, err
	}
	return parseVerdict(resp.Text)
}

func parseCriteria(answer string) ([]analysisapimodels.ScoreWithConfidence, error) {
	answer, err := validateAnswer(answer, criteriaSchema)
	if err != nil {
		return nil, err
	}
	payload := struct {
		Criteria []analysisapimodels.ScoreWithConfidence `json:"criteria"`
	}{}
	if err := json.Unmarshal([]byte(answer), &payload); err != nil {
		return nil, errors.Wrap(err, "ошибка сериализации ответа ИИ")
	}
	result := make([]analysisapimodels.ScoreWithConfidence, 0, len(payload.Criteria))
	for _, item := range payload.Criteria {
		if strings.TrimSpace(item.Name) == "" {
			continue
		}
		if item.Score < 0 {
			item.Score = 0
		}
		if item.Score > 100 {
			item.Score = 100
		}
		switch item.Confidence {
		case analysisapimodels.ConfidenceLow, analysisapimodels.ConfidenceMedium, analysisapimodels.ConfidenceHigh:
		default:
			item.Confidence = analysisapimodels.ConfidenceMedium
		}
		switch item.Importance {
		case "low", "medium", "high":
		default:
			item.Importance = "medium"
		}
		if item.Evidence == nil {
			item.Evidence = []string{}
		}
		result = append(result, item)
	}
	return result, nil
}

func parseJobFit(answer string) (requirementapimodels.CoverageMatrix, error) {
	answer, err := validateAnswer(answer, jobFitSchema)
	if err != nil {
		return nil, err
	}
	payload := struct {
		Requirements []struct {
			Label      string                              `json:"label"`
			Meets      requirementapimodels.CoverageMeets  `json:"meets"`
			Source     requirementapimodels.CoverageSource `json:"source"`
			Evidence   []string                            `json:"evidence"`
			Confidence *float64                            `json:"confidence"`
		} `json:"requirements"`
	}{}
	if err := json.Unmarshal([]byte(answer), &payload); err != nil {
		return nil, errors.Wrap(err, "ошибка сериализации ответа ИИ")
	}
	matrix := requirementapimodels.CoverageMatrix{}
	for _, item := range payload.Requirements {
		label := strings.TrimSpace(item.Label)
		if label == "" {
			continue
		}
		switch item.Source {
		case requirementapimodels.CoverageSourceCV, requirementapimodels.CoverageSourceInterview,
			requirementapimodels.CoverageSourceBoth, requirementapimodels.CoverageSourceNeither:
		default:
			item.Source = requirementapimodels.CoverageSourceInterview
		}
		// отсутствующая уверенность трактуется как средняя
		confidence := 0.5
		if item.Confidence != nil {
			confidence = *item.Confidence
		}
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		matrix[label] = requirementapimodels.CoverageEntry{
			Meets:      item.Meets,
			Source:     item.Source,
			Evidence:   strings.Join(item.Evidence, "; "),
			Confidence: confidence,
		}
	}
	return matrix, nil
}

func parseVerdict(answer string) (hiringVerdict, error) {
	answer, err := validateAnswer(answer, decisionSchema)
	if err != nil {
		return hiringVerdict{}, err
	}
	verdict := hiringVerdict{}
	if err := json.Unmarshal([]byte(answer), &verdict); err != nil {
		return hiringVerdict{}, errors.Wrap(err, "ошибка сериализации ответа ИИ")
	}
	return verdict, nil
}

func validateAnswer(answer, schema string) (string, error) {
	answer = stripJSONFence(answer)
	validation, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(answer),
	)
	if err != nil {
		return "", errors.Wrap(err, "ошибка валидации ответа ИИ")
	}
	if !validation.Valid() {
		return "", errors.Errorf("ответ ИИ не соответствует схеме: %v", validation.Errors())
	}
	return answer, nil
}

func requirementLines(items []requirementapimodels.RequirementItem) string {
	if len(items) == 0 {
		return "- требования не выделены"
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		marker := ""
		if item.Must {
			marker = " (обязательное)"
		}
		lines = append(lines, fmt.Sprintf("- %s%s", item.Label, marker))
	}
	return strings.Join(lines, "\n")
}

func fullTranscript(turns []dbmodels.InterviewTurn) string {
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		role := "Кандидат"
		if turn.Role == dbmodels.TurnRoleAssistant {
			role = "Интервьюер"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, turn.Text))
	}
	return strings.Join(lines, "\n")
}

func meanScore(criteria []analysisapimodels.ScoreWithConfidence) *float64 {
	if len(criteria) == 0 {
		return nil
	}
	sum := 0.0
	for _, item := range criteria {
		sum += item.Score
	}
	mean := sum / float64(len(criteria))
	return &mean
}

func stripJSONFence(answer string) string {
	answer = strings.Replace(answer, "```json", "", 1)
	answer = strings.Replace(answer, "```", "", 1)
	return strings.TrimSpace(answer)
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
