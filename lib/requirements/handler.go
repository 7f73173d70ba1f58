package requirements

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"hr-interview-backend/config"
	"hr-interview-backend/db"
	aiclient "hr-interview-backend/lib/ai-client"
	requirementstore "hr-interview-backend/lib/requirements/store"
	aiclientmodels "hr-interview-backend/models/api/aiclient"
	requirementapimodels "hr-interview-backend/models/api/requirements"
	dbmodels "hr-interview-backend/models/db"
)

const (
	defaultWeight = 0.5
	// критические требования при отсутствии явных must - верхние по весу
	criticalTopN = 3
)

// StopPolicy - пороги досрочного завершения по покрытию требований
type StopPolicy struct {
	MinPositive       int
	MinNegative       int
	MinMixed          int
	LowScoreThreshold float64
}

type Provider interface {
	// ExtractRequirements нормализует описание вакансии в список требований
	ExtractRequirements(ctx context.Context, jobDescription string) ([]requirementapimodels.RequirementItem, error)
	// GetForVacancy возвращает сохранённый список требований вакансии, при отсутствии формирует его
	GetForVacancy(ctx context.Context, vacancy dbmodels.Vacancy) ([]requirementapimodels.RequirementItem, error)
	// UpdateCoverage сливает новые свидетельства в матрицу, перезапись только при
	// не меньшей уверенности, записи никогда не удаляются
	UpdateCoverage(matrix, updates requirementapimodels.CoverageMatrix) requirementapimodels.CoverageMatrix
	// MatchEvidence сопоставляет текст (ответ кандидата или резюме)
	// с ключевыми словами требований
	MatchEvidence(items []requirementapimodels.RequirementItem, text string, source requirementapimodels.CoverageSource) requirementapimodels.CoverageMatrix
	// ShouldStopForCoverage - решение о досрочном завершении, runningScore < 0 означает
	// отсутствие текущей оценки
	ShouldStopForCoverage(items []requirementapimodels.RequirementItem, matrix requirementapimodels.CoverageMatrix, askedCount int, runningScore float64) bool
	CriticalLabels(items []requirementapimodels.RequirementItem) []string
}

var Instance Provider

func NewHandler() {
	cfg := config.Conf.Interview
	Instance = &impl{
		ai:    aiclient.Instance,
		store: requirementstore.NewInstance(db.DB),
		policy: StopPolicy{
			MinPositive:       cfg.StopMinPositive,
			MinNegative:       cfg.StopMinNegative,
			MinMixed:          cfg.StopMinMixed,
			LowScoreThreshold: float64(cfg.LowScoreThreshold),
		},
	}
}

type impl struct {
	ai     aiclient.Provider
	store  requirementstore.Provider
	policy StopPolicy
}

const extractSystemPrompt = `Ты - опытный рекрутер. По описанию вакансии составь список требований к кандидату.
Ответь строго JSON объектом вида:
{"requirements":[{"id":"","label":"название требования","must":true,"weight":0.8,"keywords":["слово"],"rubric":"что считать хорошим ответом","question_templates":["вопрос кандидату"]}]}
Никакого текста вне JSON.`

func (i impl) ExtractRequirements(ctx context.Context, jobDescription string) ([]requirementapimodels.RequirementItem, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return []requirementapimodels.RequirementItem{}, nil
	}
	resp, err := i.ai.Generate(ctx, aiclientmodels.GenerationRequest{
		Prompt:       fmt.Sprintf("Составь список требований по описанию вакансии:\n%s", jobDescription),
		SystemPrompt: extractSystemPrompt,
		Structured:   true,
		Temperature:  0.2,
		MaxTokens:    2000,
		Kind:         string(dbmodels.AiRequirementsType),
	})
	if err != nil {
		// цепочка провайдеров не отказывает, но страхуемся эвристикой
		log.WithError(err).Warn("ошибка генерации списка требований, используется эвристика")
		return heuristicRequirements(jobDescription), nil
	}
	items, err := parseRequirements(resp.Text)
	if err != nil || len(items) == 0 {
		log.WithError(err).
			WithField("ai", resp.Provider).
			Warn("ответ ИИ со списком требований не прошёл разбор, используется эвристика")
		return heuristicRequirements(jobDescription), nil
	}
	return normalizeItems(items), nil
}

func (i impl) GetForVacancy(ctx context.Context, vacancy dbmodels.Vacancy) ([]requirementapimodels.RequirementItem, error) {
	rec, err := i.store.GetByVacancyID(vacancy.ID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения требований вакансии")
	}
	if rec != nil {
		return rec.Items, nil
	}
	items, err := i.ExtractRequirements(ctx, vacancy.Description)
	if err != nil {
		return nil, err
	}
	_, err = i.store.Save(dbmodels.RequirementSpec{
		VacancyID: vacancy.ID,
		Items:     items,
	})
	if err != nil {
		return nil, errors.Wrap(err, "ошибка сохранения требований вакансии")
	}
	return items, nil
}

func (i impl) UpdateCoverage(matrix, updates requirementapimodels.CoverageMatrix) requirementapimodels.CoverageMatrix {
	result := requirementapimodels.CoverageMatrix{}
	for label, entry := range matrix {
		result[label] = entry
	}
	for label, entry := range updates {
		existing, ok := result[label]
		if ok && existing.Confidence > entry.Confidence {
			continue
		}
		if ok && existing.Source != entry.Source && existing.Meets != requirementapimodels.CoverageNo {
			// требование подтверждалось и другим источником
			entry.Source = requirementapimodels.CoverageSourceBoth
		}
		result[label] = entry
	}
	return result
}

func (i impl) MatchEvidence(items []requirementapimodels.RequirementItem, text string, source requirementapimodels.CoverageSource) requirementapimodels.CoverageMatrix {
	result := requirementapimodels.CoverageMatrix{}
	lowered := strings.ToLower(text)
	if strings.TrimSpace(lowered) == "" {
		return result
	}
	for _, item := range items {
		hits := 0
		for _, keyword := range item.Keywords {
			if keyword != "" && strings.Contains(lowered, strings.ToLower(keyword)) {
				hits++
			}
		}
		switch {
		case hits >= 2:
			result[item.Label] = requirementapimodels.CoverageEntry{
				Meets:      requirementapimodels.CoverageYes,
				Source:     source,
				Evidence:   truncate(text, 300),
				Confidence: 0.6,
			}
		case hits == 1:
			result[item.Label] = requirementapimodels.CoverageEntry{
				Meets:      requirementapimodels.CoveragePartial,
				Source:     source,
				Evidence:   truncate(text, 300),
				Confidence: 0.35,
			}
		}
	}
	return result
}

// ShouldStopForCoverage - правила в порядке приоритета, первое сработавшее решает
func (i impl) ShouldStopForCoverage(items []requirementapimodels.RequirementItem, matrix requirementapimodels.CoverageMatrix, askedCount int, runningScore float64) bool {
	critical := i.CriticalLabels(items)
	if len(critical) == 0 {
		return false
	}

	allYes := true
	anyNo := false
	partialCount := 0
	for _, label := range critical {
		entry, ok := matrix[label]
		if !ok {
			allYes = false
			continue
		}
		switch entry.Meets {
		case requirementapimodels.CoverageYes:
		case requirementapimodels.CoverageNo:
			allYes = false
			anyNo = true
		case requirementapimodels.CoveragePartial:
			allYes = false
			partialCount++
		default:
			allYes = false
		}
	}

	if allYes && askedCount >= i.policy.MinPositive {
		return true
	}
	if anyNo && askedCount >= i.policy.MinNegative {
		return true
	}
	if partialCount >= 2 && runningScore >= 0 && runningScore <= i.policy.LowScoreThreshold && askedCount >= i.policy.MinMixed {
		return true
	}
	return false
}

// CriticalLabels - требования с признаком must, при их отсутствии верхние по весу
func (i impl) CriticalLabels(items []requirementapimodels.RequirementItem) []string {
	labels := []string{}
	for _, item := range items {
		if item.Must {
			labels = append(labels, item.Label)
		}
	}
	if len(labels) > 0 {
		return labels
	}
	sorted := make([]requirementapimodels.RequirementItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Weight > sorted[b].Weight
	})
	for k, item := range sorted {
		if k == criticalTopN {
			break
		}
		labels = append(labels, item.Label)
	}
	return labels
}

func parseRequirements(answer string) ([]requirementapimodels.RequirementItem, error) {
	answer = stripJSONFence(answer)
	validation, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(requirementsSchema),
		gojsonschema.NewStringLoader(answer),
	)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка валидации ответа ИИ")
	}
	if !validation.Valid() {
		return nil, errors.Errorf("ответ ИИ не соответствует схеме: %v", validation.Errors())
	}
	payload := struct {
		Requirements []requirementapimodels.RequirementItem `json:"requirements"`
	}{}
	if err := json.Unmarshal([]byte(answer), &payload); err != nil {
		return nil, errors.Wrap(err, "ошибка сериализации ответа ИИ")
	}
	return payload.Requirements, nil
}

// normalizeItems дозаполняет и выравнивает список требований:
// идентификаторы, веса в [0..1] с нормировкой суммы в группе,
// ключевые слова и шаблоны вопросов по метке
func normalizeItems(items []requirementapimodels.RequirementItem) []requirementapimodels.RequirementItem {
	result := make([]requirementapimodels.RequirementItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Label) == "" {
			continue
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if item.Weight <= 0 {
			item.Weight = defaultWeight
		}
		if item.Weight > 1 {
			item.Weight = 1
		}
		if len(item.Keywords) == 0 {
			keywords := tokenize(item.Label)
			filtered := []string{}
			for _, keyword := range keywords {
				if len([]rune(keyword)) >= 3 {
					filtered = append(filtered, keyword)
				}
			}
			if len(filtered) == 0 {
				filtered = []string{strings.ToLower(item.Label)}
			}
			item.Keywords = filtered
		}
		if len(item.QuestionTemplates) == 0 {
			item.QuestionTemplates = []string{fmt.Sprintf("Расскажите о вашем опыте: %s", item.Label)}
		}
		result = append(result, item)
	}
	normalizeGroupWeights(result, true)
	normalizeGroupWeights(result, false)
	return result
}

func normalizeGroupWeights(items []requirementapimodels.RequirementItem, must bool) {
	sum := 0.0
	for _, item := range items {
		if item.Must == must {
			sum += item.Weight
		}
	}
	if sum <= 0 {
		return
	}
	for k := range items {
		if items[k].Must == must {
			items[k].Weight = items[k].Weight / sum
		}
	}
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
