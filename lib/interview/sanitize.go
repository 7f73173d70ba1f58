package interview

import (
	"regexp"
	"strings"
	"unicode"

	interviewapimodels "hr-interview-backend/models/api/interview"
	dbmodels "hr-interview-backend/models/db"
)

// сигнал завершения интервью от модели
const finishedSentinel = "FINISHED"

var (
	linkRe  = regexp.MustCompile(`(?i)(https?://|www\.)\S+`)
	emailRe = regexp.MustCompile(`\S+@\S+\.\S+`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-()]{8,}\d`)
	// приветствия, которые модель добавляет сама; своё приветствие сервис уже произнёс
	greetingRe = regexp.MustCompile(`(?i)^(здравствуйте|добрый день|добрый вечер|доброе утро|привет|приветствую|hello|hi|merhaba)[!,.\s]+`)
)

// isFinishedSignal - модель просит завершить интервью
func isFinishedSignal(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == "" || strings.EqualFold(trimmed, finishedSentinel)
}

// sanitizeQuestion чистит сгенерированный вопрос.
// Пустая строка в результате означает, что текст непригоден
func sanitizeQuestion(text string) string {
	text = strings.ReplaceAll(text, finishedSentinel, "")
	text = strings.Trim(strings.TrimSpace(text), `"«»`)
	if text == "" {
		return ""
	}
	// ссылки, почта и телефоны в вопросе недопустимы
	if linkRe.MatchString(text) || emailRe.MatchString(text) || phoneRe.MatchString(text) {
		return ""
	}
	return text
}

func stripGreeting(text string) string {
	return strings.TrimSpace(greetingRe.ReplaceAllString(text, ""))
}

// personalize добавляет обращение по имени, если модель его не использовала
func personalize(text, firstName string) string {
	if firstName == "" || strings.Contains(text, firstName) {
		return text
	}
	runes := []rune(text)
	runes[0] = unicode.ToLower(runes[0])
	return firstName + ", " + string(runes)
}

func containsAnyFold(text string, markers []string) bool {
	lowered := strings.ToLower(text)
	for _, marker := range markers {
		if marker != "" && strings.Contains(lowered, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// salaryQuestionAnswered - среди реплик есть зарплатный вопрос ассистента
// с непустым ответом кандидата после него
func salaryQuestionAnswered(turns []dbmodels.InterviewTurn, keywords []string) bool {
	for k, turn := range turns {
		if turn.Role != dbmodels.TurnRoleAssistant || !containsAnyFold(turn.Text, keywords) {
			continue
		}
		for j := k + 1; j < len(turns); j++ {
			if turns[j].Role != dbmodels.TurnRoleUser {
				continue
			}
			if strings.TrimSpace(turns[j].Text) != "" {
				return true
			}
			break
		}
	}
	return false
}

const (
	weakAvgAnswerLen     = 50
	weakRecentTurns      = 3
	weakUncertaintyCount = 2
	hastyAnswerSec       = 5
)

// distractedSignals - поведенческие сигналы фронта говорят о невовлечённости:
// кандидат переключал вкладку либо ответил подозрительно быстро
func distractedSignals(signals interviewapimodels.TurnSignals) bool {
	if signals.TabSwitched {
		return true
	}
	return signals.AnswerDurationSec > 0 && signals.AnswerDurationSec < hastyAnswerSec
}

// фразы неуверенности в ответах (ru/en/tr)
var uncertaintyMarkers = []string{
	"не знаю", "не уверен", "наверное", "затрудняюсь", "сложно сказать", "возможно",
	"not sure", "i don't know", "maybe", "i guess",
	"bilmiyorum", "emin değilim", "sanırım",
}

// weakSignal - ответы кандидата дают слабый сигнал: слишком коротко
// либо много фраз неуверенности в последних репликах
func weakSignal(turns []dbmodels.InterviewTurn) bool {
	userTurns := []string{}
	for _, turn := range turns {
		if turn.Role == dbmodels.TurnRoleUser {
			userTurns = append(userTurns, turn.Text)
		}
	}
	if len(userTurns) == 0 {
		return false
	}

	total := 0
	for _, text := range userTurns {
		total += len([]rune(strings.TrimSpace(text)))
	}
	if total/len(userTurns) < weakAvgAnswerLen {
		return true
	}

	recent := userTurns
	if len(recent) > weakRecentTurns {
		recent = recent[len(recent)-weakRecentTurns:]
	}
	markerCount := 0
	for _, text := range recent {
		lowered := strings.ToLower(text)
		for _, marker := range uncertaintyMarkers {
			if strings.Contains(lowered, marker) {
				markerCount++
			}
		}
	}
	return markerCount >= weakUncertaintyCount
}

// questionAlreadyAsked - вопрос рекрутера уже звучал в репликах ассистента
func questionAlreadyAsked(turns []dbmodels.InterviewTurn, question string) bool {
	needle := normalizeQuestion(question)
	if needle == "" {
		return true
	}
	for _, turn := range turns {
		if turn.Role != dbmodels.TurnRoleAssistant {
			continue
		}
		if strings.Contains(normalizeQuestion(turn.Text), needle) {
			return true
		}
	}
	return false
}

func normalizeQuestion(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
