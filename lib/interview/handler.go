package interview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hr-interview-backend/config"
	"hr-interview-backend/db"
	aiclient "hr-interview-backend/lib/ai-client"
	applicantstore "hr-interview-backend/lib/applicant/store"
	sessionstore "hr-interview-backend/lib/interview/session-store"
	"hr-interview-backend/lib/requirements"
	vacancystore "hr-interview-backend/lib/vacancy/store"
	aiclientmodels "hr-interview-backend/models/api/aiclient"
	interviewapimodels "hr-interview-backend/models/api/interview"
	requirementapimodels "hr-interview-backend/models/api/requirements"
	dbmodels "hr-interview-backend/models/db"
)

// единственный класс ошибок, который уходит наружу
var ErrInterviewNotFound = errors.New("интервью не найдено")

const (
	maxAppendAttempts = 5
	transcriptTailLen = 6
	shortAnswerLen    = 50
)

// Provider - пошаговая машина состояний интервью.
// На каждый запрос гарантированно возвращается вопрос либо решение о завершении:
// отказы генерации гасятся внутри, наружу уходит только ErrInterviewNotFound
type Provider interface {
	Create(ctx context.Context, vacancyID, applicantID string) (*dbmodels.Interview, error)
	Get(interviewID string) (*dbmodels.Interview, error)
	// NextQuestion - чистое решение по текущей истории, ничего не сохраняет
	NextQuestion(ctx context.Context, interviewID string, signals interviewapimodels.TurnSignals) (interviewapimodels.TurnResult, error)
	// NextTurn сохраняет ответ кандидата, принимает решение и сохраняет вопрос
	NextTurn(ctx context.Context, interviewID, answerText string, signals interviewapimodels.TurnSignals) (interviewapimodels.TurnResult, error)
}

var Instance Provider

func NewHandler() {
	cfg := config.Conf
	keywords := []string{}
	for _, keyword := range strings.Split(cfg.Interview.SalaryKeywords, ",") {
		if trimmed := strings.TrimSpace(keyword); trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	Instance = &impl{
		ai:             aiclient.Instance,
		requirements:   requirements.Instance,
		sessionStore:   sessionstore.NewInstance(db.DB),
		vacancyStore:   vacancystore.NewInstance(db.DB),
		applicantStore: applicantstore.NewInstance(db.DB),
		salaryKeywords: keywords,
		salaryMinAsked: cfg.Interview.SalaryMinAsked,
		probeMinAsked:  cfg.Interview.ProbeMinAsked,
		openingTimeout: time.Duration(cfg.AI.Timeout.OpeningSec) * time.Second,
		genTimeout:     time.Duration(cfg.AI.Timeout.GenerationSec) * time.Second,
		polishTimeout:  time.Duration(cfg.AI.Timeout.PolishSec) * time.Second,
	}
}

type impl struct {
	ai             aiclient.Provider
	requirements   requirements.Provider
	sessionStore   sessionstore.Provider
	vacancyStore   vacancystore.Provider
	applicantStore applicantstore.Provider

	salaryKeywords []string
	salaryMinAsked int
	probeMinAsked  int
	openingTimeout time.Duration
	genTimeout     time.Duration
	polishTimeout  time.Duration
}

func (i impl) getLogger(interviewID string) *log.Entry {
	return log.WithField("interview_id", interviewID)
}

func (i impl) Create(ctx context.Context, vacancyID, applicantID string) (*dbmodels.Interview, error) {
	vacancyRec, err := i.vacancyStore.GetByID(vacancyID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения вакансии")
	}
	if vacancyRec == nil {
		return nil, errors.New("вакансия не найдена")
	}
	applicantRec, err := i.applicantStore.GetByID(applicantID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения кандидата")
	}
	if applicantRec == nil {
		return nil, errors.New("кандидат не найден")
	}
	rec := dbmodels.Interview{
		VacancyID:          vacancyID,
		ApplicantID:        applicantID,
		Status:             dbmodels.InterviewCreated,
		AskedByRequirement: dbmodels.AskedCountMap{},
		Coverage:           dbmodels.CoverageColumn{},
	}
	id, err := i.sessionStore.SaveInterview(rec)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка сохранения интервью")
	}
	rec.ID = id
	rec.Vacancy = *vacancyRec
	rec.Applicant = *applicantRec
	return &rec, nil
}

func (i impl) Get(interviewID string) (*dbmodels.Interview, error) {
	rec, err := i.sessionStore.GetInterview(interviewID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения интервью")
	}
	if rec == nil {
		return nil, ErrInterviewNotFound
	}
	return rec, nil
}

func (i impl) NextQuestion(ctx context.Context, interviewID string, signals interviewapimodels.TurnSignals) (interviewapimodels.TurnResult, error) {
	sc, err := i.loadSession(ctx, interviewID)
	if err != nil {
		return interviewapimodels.TurnResult{}, err
	}
	// завершённое интервью не оживает: done не меняется на false
	if sc.rec.Status == dbmodels.InterviewFinished || sc.rec.Status == dbmodels.InterviewAnalyzed {
		return interviewapimodels.TurnResult{
			Done:         true,
			LiveInsights: i.insights(sc),
		}, nil
	}
	return i.decide(ctx, sc, signals).TurnResult, nil
}

func (i impl) NextTurn(ctx context.Context, interviewID, answerText string, signals interviewapimodels.TurnSignals) (interviewapimodels.TurnResult, error) {
	sc, err := i.loadSession(ctx, interviewID)
	if err != nil {
		return interviewapimodels.TurnResult{}, err
	}
	logger := i.getLogger(interviewID)

	// завершённое интервью не оживает: done не меняется на false
	if sc.rec.Status == dbmodels.InterviewFinished || sc.rec.Status == dbmodels.InterviewAnalyzed {
		return interviewapimodels.TurnResult{
			Done:         true,
			LiveInsights: i.insights(sc),
		}, nil
	}

	if strings.TrimSpace(answerText) != "" {
		turn, err := i.appendTurn(interviewID, dbmodels.TurnRoleUser, answerText, nextSeq(sc.turns))
		if err != nil {
			return interviewapimodels.TurnResult{}, err
		}
		sc.turns = append(sc.turns, turn)
		sc.matrix = i.requirements.UpdateCoverage(sc.matrix,
			i.requirements.MatchEvidence(sc.items, answerText, requirementapimodels.CoverageSourceInterview))
	}

	result := i.decide(ctx, sc, signals)

	if result.Done {
		sc.rec.Status = dbmodels.InterviewFinished
	} else {
		// подавление дубликата: идентичный предыдущему вопрос не сохраняем повторно
		if last := lastAssistantText(sc.turns); strings.TrimSpace(last) != strings.TrimSpace(result.Question) {
			if _, err := i.appendTurn(interviewID, dbmodels.TurnRoleAssistant, result.Question, nextSeq(sc.turns)); err != nil {
				return interviewapimodels.TurnResult{}, err
			}
			sc.rec.AskedCount = sc.askedCount + 1
		}
		sc.rec.Status = dbmodels.InterviewInProgress
	}
	if result.LiveInsights.WeakSignal && result.targetLabel != "" {
		if sc.rec.AskedByRequirement == nil {
			sc.rec.AskedByRequirement = dbmodels.AskedCountMap{}
		}
		sc.rec.AskedByRequirement[result.targetLabel]++
	}
	sc.rec.Coverage = dbmodels.CoverageColumn(sc.matrix)
	if _, err := i.sessionStore.SaveInterview(*sc.rec); err != nil {
		logger.WithError(err).Error("ошибка сохранения состояния интервью")
	}
	return result.TurnResult, nil
}

// sessionContext - всё, что нужно для одного решения по ходу интервью
type sessionContext struct {
	rec        *dbmodels.Interview
	turns      []dbmodels.InterviewTurn
	items      []requirementapimodels.RequirementItem
	matrix     requirementapimodels.CoverageMatrix
	askedCount int
}

type decision struct {
	interviewapimodels.TurnResult
	targetLabel string // требование, на которое нацелен уточняющий вопрос
}

func (i impl) loadSession(ctx context.Context, interviewID string) (*sessionContext, error) {
	rec, err := i.sessionStore.GetInterview(interviewID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения интервью")
	}
	if rec == nil {
		return nil, ErrInterviewNotFound
	}
	turns, err := i.sessionStore.LoadTurns(interviewID)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения реплик интервью")
	}
	items, err := i.requirements.GetForVacancy(ctx, rec.Vacancy)
	if err != nil {
		// без списка требований интервью продолжается, покрытие просто не обновится
		i.getLogger(interviewID).WithError(err).Warn("ошибка получения требований вакансии")
		items = []requirementapimodels.RequirementItem{}
	}

	// матрица покрытия собирается детерминированно: резюме, сохранённые
	// результаты анализа, затем свидетельства из реплик
	matrix := i.requirements.MatchEvidence(items, rec.Applicant.ResumeText, requirementapimodels.CoverageSourceCV)
	matrix = i.requirements.UpdateCoverage(matrix, requirementapimodels.CoverageMatrix(rec.Coverage))
	for _, turn := range turns {
		if turn.Role == dbmodels.TurnRoleUser {
			matrix = i.requirements.UpdateCoverage(matrix,
				i.requirements.MatchEvidence(items, turn.Text, requirementapimodels.CoverageSourceInterview))
		}
	}

	return &sessionContext{
		rec:        rec,
		turns:      turns,
		items:      items,
		matrix:     matrix,
		askedCount: countAssistantTurns(turns),
	}, nil
}

// decide - правила хода интервью в порядке приоритета, первое сработавшее решает
func (i impl) decide(ctx context.Context, sc *sessionContext, signals interviewapimodels.TurnSignals) decision {
	// первый вопрос: завершение на первом ходу невозможно
	if sc.askedCount == 0 {
		return decision{TurnResult: interviewapimodels.TurnResult{
			Question:     i.openingQuestion(ctx, sc),
			LiveInsights: i.insights(sc),
		}}
	}

	// зарплатный вопрос задан и отвечен - интервью выполнило программу
	if sc.askedCount >= i.salaryMinAsked && salaryQuestionAnswered(sc.turns, i.salaryKeywords) {
		return decision{TurnResult: interviewapimodels.TurnResult{
			Done:         true,
			LiveInsights: i.insights(sc),
		}}
	}

	// досрочное завершение по покрытию требований
	if i.requirements.ShouldStopForCoverage(sc.items, sc.matrix, sc.askedCount, coverageScore(sc.items, sc.matrix)) {
		return decision{TurnResult: interviewapimodels.TurnResult{
			Done:         true,
			LiveInsights: i.insights(sc),
		}}
	}

	// незаданные вопросы рекрутера задаются дословно, без генерации
	for _, question := range sc.rec.Vacancy.ExtraQuestions {
		if !questionAlreadyAsked(sc.turns, question) {
			return decision{TurnResult: interviewapimodels.TurnResult{
				Question:     question,
				LiveInsights: i.insights(sc),
			}}
		}
	}

	return i.generateNext(ctx, sc, signals)
}

// generateNext - основная генерация следующего вопроса; при слабом сигнале
// параллельно выполняется уточняющий проход по самому слабому требованию
func (i impl) generateNext(ctx context.Context, sc *sessionContext, signals interviewapimodels.TurnSignals) decision {
	weak := (weakSignal(sc.turns) || distractedSignals(signals)) && sc.askedCount >= i.probeMinAsked

	var defaultText, probeText, targetLabel string
	var g errgroup.Group
	g.Go(func() error {
		defaultText = i.generateDefault(ctx, sc)
		return nil
	})
	if weak {
		g.Go(func() error {
			probeText, targetLabel = i.generateProbe(ctx, sc)
			return nil
		})
	}
	_ = g.Wait()

	if isFinishedSignal(defaultText) && probeText == "" {
		return decision{TurnResult: interviewapimodels.TurnResult{
			Done:         true,
			LiveInsights: i.insightsWeak(sc, weak),
		}}
	}

	question := sanitizeQuestion(defaultText)
	label := ""
	if weak && probeText != "" {
		// уточняющий вопрос приоритетнее общего
		question = probeText
		label = targetLabel
	}
	if question == "" {
		question = neutralFollowUpQuestion
	}
	question = i.polish(ctx, question, sc.rec.ID)

	return decision{
		TurnResult: interviewapimodels.TurnResult{
			Question:     question,
			LiveInsights: i.insightsWeak(sc, weak),
		},
		targetLabel: label,
	}
}

func (i impl) openingQuestion(ctx context.Context, sc *sessionContext) string {
	vacancy := sc.rec.Vacancy
	applicant := sc.rec.Applicant

	relevance := "нет данных"
	if covered := coveredLabels(sc.matrix); len(covered) > 0 {
		relevance = "в резюме подтверждено: " + strings.Join(covered, ", ")
	}
	genCtx, cancel := context.WithTimeout(ctx, i.openingTimeout)
	defer cancel()
	resp, err := i.ai.Generate(genCtx, aiclientmodels.GenerationRequest{
		Prompt: fmt.Sprintf(openingPromptPattern,
			vacancy.Name, vacancy.Description, applicant.ResumeText,
			relevance, strings.Join(vacancy.ExtraQuestions, "; ")),
		SystemPrompt: interviewerSystemPrompt,
		Temperature:  0.6,
		MaxTokens:    500,
		Kind:         string(dbmodels.AiOpeningQuestionType),
		RefID:        sc.rec.ID,
	})
	question := ""
	if err == nil {
		question = sanitizeQuestion(stripGreeting(resp.Text))
	}
	if question == "" {
		question = fmt.Sprintf("Расскажите, пожалуйста, о вашем опыте по направлению «%s».", vacancy.Name)
	}
	return personalize(question, applicant.FirstName)
}

func (i impl) generateDefault(ctx context.Context, sc *sessionContext) string {
	hint := ""
	if last := lastUserText(sc.turns); last != "" && len([]rune(strings.TrimSpace(last))) < shortAnswerLen {
		hint = shortAnswerHint
	}
	unmet := unmetCriticalLabels(i.requirements.CriticalLabels(sc.items), sc.matrix)
	genCtx, cancel := context.WithTimeout(ctx, i.genTimeout)
	defer cancel()
	resp, err := i.ai.Generate(genCtx, aiclientmodels.GenerationRequest{
		Prompt: fmt.Sprintf(nextQuestionPromptPattern,
			sc.rec.Vacancy.Name, sc.rec.Vacancy.Description,
			transcriptTail(sc.turns, transcriptTailLen),
			strings.Join(unmet, ", "), hint),
		SystemPrompt: interviewerSystemPrompt,
		Temperature:  0.7,
		MaxTokens:    500,
		Kind:         string(dbmodels.AiNextQuestionType),
		RefID:        sc.rec.ID,
	})
	if err != nil {
		i.getLogger(sc.rec.ID).WithError(err).Warn("ошибка генерации следующего вопроса")
		return neutralFollowUpQuestion
	}
	return resp.Text
}

// generateProbe выбирает требование с наименьшим подтверждением
// и формирует вопрос точно по нему
func (i impl) generateProbe(ctx context.Context, sc *sessionContext) (question, label string) {
	gap := weakestRequirement(sc.items, sc.matrix, i.requirements.CriticalLabels(sc.items))
	if gap == nil {
		return "", ""
	}
	genCtx, cancel := context.WithTimeout(ctx, i.genTimeout)
	defer cancel()
	resp, err := i.ai.Generate(genCtx, aiclientmodels.GenerationRequest{
		Prompt: fmt.Sprintf(weaknessProbePromptPattern,
			sc.rec.Vacancy.Name, gap.Label, gap.Rubric,
			transcriptTail(sc.turns, transcriptTailLen)),
		SystemPrompt: interviewerSystemPrompt,
		Temperature:  0.5,
		MaxTokens:    400,
		Kind:         string(dbmodels.AiWeaknessProbeType),
		RefID:        sc.rec.ID,
	})
	if err == nil {
		if sanitized := sanitizeQuestion(resp.Text); sanitized != "" {
			return sanitized, gap.Label
		}
	}
	// есть готовый шаблон вопроса по требованию - используем его
	if len(gap.QuestionTemplates) > 0 {
		return gap.QuestionTemplates[0], gap.Label
	}
	return "", ""
}

// polish смягчает формулировку; любая неудача - остаёмся с исходным текстом
func (i impl) polish(ctx context.Context, question, interviewID string) string {
	polishCtx, cancel := context.WithTimeout(ctx, i.polishTimeout)
	defer cancel()
	resp, err := i.ai.Generate(polishCtx, aiclientmodels.GenerationRequest{
		Prompt:      fmt.Sprintf(polishPromptPattern, question),
		Temperature: 0.5,
		MaxTokens:   300,
		Kind:        string(dbmodels.AiPolishType),
		RefID:       interviewID,
	})
	if err != nil || resp.Provider == aiclient.ProviderLocal {
		return question
	}
	if polished := sanitizeQuestion(resp.Text); polished != "" {
		return polished
	}
	return question
}

func (i impl) appendTurn(interviewID string, role dbmodels.TurnRole, text string, seq int) (dbmodels.InterviewTurn, error) {
	turn := dbmodels.InterviewTurn{
		InterviewID: interviewID,
		Role:        role,
		Text:        text,
	}
	for attempt := 0; attempt < maxAppendAttempts; attempt++ {
		turn.SeqNum = seq
		err := i.sessionStore.AppendTurn(turn)
		if err == nil {
			return turn, nil
		}
		if errors.Is(err, sessionstore.ErrTurnConflict) {
			// номер заняла параллельная вставка - пробуем следующий
			seq++
			continue
		}
		return dbmodels.InterviewTurn{}, errors.Wrap(err, "ошибка сохранения реплики")
	}
	return dbmodels.InterviewTurn{}, errors.New("не удалось сохранить реплику, порядковые номера заняты")
}

func (i impl) insights(sc *sessionContext) interviewapimodels.LiveInsights {
	return interviewapimodels.LiveInsights{
		AskedCount: sc.askedCount,
		Coverage:   sc.matrix,
	}
}

func (i impl) insightsWeak(sc *sessionContext, weak bool) interviewapimodels.LiveInsights {
	result := i.insights(sc)
	result.WeakSignal = weak
	return result
}

func countAssistantTurns(turns []dbmodels.InterviewTurn) int {
	count := 0
	for _, turn := range turns {
		if turn.Role == dbmodels.TurnRoleAssistant {
			count++
		}
	}
	return count
}

func nextSeq(turns []dbmodels.InterviewTurn) int {
	if len(turns) == 0 {
		return 1
	}
	return turns[len(turns)-1].SeqNum + 1
}

func lastAssistantText(turns []dbmodels.InterviewTurn) string {
	for k := len(turns) - 1; k >= 0; k-- {
		if turns[k].Role == dbmodels.TurnRoleAssistant {
			return turns[k].Text
		}
	}
	return ""
}

func lastUserText(turns []dbmodels.InterviewTurn) string {
	for k := len(turns) - 1; k >= 0; k-- {
		if turns[k].Role == dbmodels.TurnRoleUser {
			return turns[k].Text
		}
	}
	return ""
}

func transcriptTail(turns []dbmodels.InterviewTurn, limit int) string {
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
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

func coveredLabels(matrix requirementapimodels.CoverageMatrix) []string {
	labels := []string{}
	for label, entry := range matrix {
		if entry.Meets == requirementapimodels.CoverageYes {
			labels = append(labels, label)
		}
	}
	return labels
}

func unmetCriticalLabels(critical []string, matrix requirementapimodels.CoverageMatrix) []string {
	unmet := []string{}
	for _, label := range critical {
		if entry, ok := matrix[label]; !ok || entry.Meets != requirementapimodels.CoverageYes {
			unmet = append(unmet, label)
		}
	}
	return unmet
}

// weakestRequirement - критическое требование с наименьшим подтверждением
func weakestRequirement(items []requirementapimodels.RequirementItem, matrix requirementapimodels.CoverageMatrix, critical []string) *requirementapimodels.RequirementItem {
	rank := func(label string) int {
		entry, ok := matrix[label]
		if !ok {
			return 0
		}
		switch entry.Meets {
		case requirementapimodels.CoverageNo:
			return 1
		case requirementapimodels.CoveragePartial:
			return 2
		default:
			return 3
		}
	}
	var weakest *requirementapimodels.RequirementItem
	weakestRank := 3
	for _, label := range critical {
		for k := range items {
			if items[k].Label != label {
				continue
			}
			if r := rank(label); r < weakestRank {
				weakestRank = r
				weakest = &items[k]
			}
		}
	}
	return weakest
}

// coverageScore - текущая интегральная оценка покрытия 0..100,
// взвешенная по весам требований
func coverageScore(items []requirementapimodels.RequirementItem, matrix requirementapimodels.CoverageMatrix) float64 {
	if len(items) == 0 {
		return -1
	}
	weightSum := 0.0
	score := 0.0
	for _, item := range items {
		weightSum += item.Weight
		entry, ok := matrix[item.Label]
		if !ok {
			continue
		}
		switch entry.Meets {
		case requirementapimodels.CoverageYes:
			score += item.Weight
		case requirementapimodels.CoveragePartial:
			score += item.Weight / 2
		}
	}
	if weightSum <= 0 {
		return -1
	}
	return 100 * score / weightSum
}
