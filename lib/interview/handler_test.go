package interview

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	sessionstore "hr-interview-backend/lib/interview/session-store"
	aiclientmodels "hr-interview-backend/models/api/aiclient"
	interviewapimodels "hr-interview-backend/models/api/interview"
	requirementapimodels "hr-interview-backend/models/api/requirements"
	dbmodels "hr-interview-backend/models/db"
)

// fakeSessionStore - хранилище интервью в памяти с настраиваемым
// конфликтом порядкового номера
type fakeSessionStore struct {
	rec       *dbmodels.Interview
	turns     []dbmodels.InterviewTurn
	conflicts map[int]bool // номера, занятые "параллельной" вставкой, срабатывают один раз
}

func (f *fakeSessionStore) GetInterview(id string) (*dbmodels.Interview, error) {
	if f.rec == nil || f.rec.ID != id {
		return nil, nil
	}
	rec := *f.rec
	return &rec, nil
}

func (f *fakeSessionStore) SaveInterview(rec dbmodels.Interview) (string, error) {
	f.rec = &rec
	return rec.ID, nil
}

func (f *fakeSessionStore) ListByStatus(status dbmodels.InterviewStatus) ([]dbmodels.Interview, error) {
	if f.rec != nil && f.rec.Status == status {
		return []dbmodels.Interview{*f.rec}, nil
	}
	return []dbmodels.Interview{}, nil
}

func (f *fakeSessionStore) LoadTurns(interviewID string) ([]dbmodels.InterviewTurn, error) {
	turns := make([]dbmodels.InterviewTurn, len(f.turns))
	copy(turns, f.turns)
	return turns, nil
}

func (f *fakeSessionStore) AppendTurn(turn dbmodels.InterviewTurn) error {
	if f.conflicts[turn.SeqNum] {
		delete(f.conflicts, turn.SeqNum)
		return sessionstore.ErrTurnConflict
	}
	for _, existing := range f.turns {
		if existing.SeqNum == turn.SeqNum {
			return sessionstore.ErrTurnConflict
		}
	}
	f.turns = append(f.turns, turn)
	return nil
}

// stubAI отвечает по типу запроса, на остальные - ошибкой
type stubAI struct {
	answers map[string]string
}

func (s *stubAI) Generate(ctx context.Context, req aiclientmodels.GenerationRequest) (aiclientmodels.GenerationResponse, error) {
	answer, ok := s.answers[req.Kind]
	if !ok {
		return aiclientmodels.GenerationResponse{}, errors.New("нет ответа для типа " + req.Kind)
	}
	return aiclientmodels.GenerationResponse{Text: answer, Provider: "stub"}, nil
}

type fakeRequirements struct {
	items []requirementapimodels.RequirementItem
	stop  bool
}

func (f *fakeRequirements) ExtractRequirements(ctx context.Context, jobDescription string) ([]requirementapimodels.RequirementItem, error) {
	return f.items, nil
}

func (f *fakeRequirements) GetForVacancy(ctx context.Context, vacancy dbmodels.Vacancy) ([]requirementapimodels.RequirementItem, error) {
	return f.items, nil
}

func (f *fakeRequirements) UpdateCoverage(matrix, updates requirementapimodels.CoverageMatrix) requirementapimodels.CoverageMatrix {
	result := requirementapimodels.CoverageMatrix{}
	for label, entry := range matrix {
		result[label] = entry
	}
	for label, entry := range updates {
		result[label] = entry
	}
	return result
}

func (f *fakeRequirements) MatchEvidence(items []requirementapimodels.RequirementItem, text string, source requirementapimodels.CoverageSource) requirementapimodels.CoverageMatrix {
	return requirementapimodels.CoverageMatrix{}
}

func (f *fakeRequirements) ShouldStopForCoverage(items []requirementapimodels.RequirementItem, matrix requirementapimodels.CoverageMatrix, askedCount int, runningScore float64) bool {
	return f.stop
}

func (f *fakeRequirements) CriticalLabels(items []requirementapimodels.RequirementItem) []string {
	labels := []string{}
	for _, item := range items {
		labels = append(labels, item.Label)
	}
	return labels
}

func newTestInterview(store *fakeSessionStore, ai *stubAI, req *fakeRequirements) *impl {
	return &impl{
		ai:             ai,
		requirements:   req,
		sessionStore:   store,
		salaryKeywords: []string{"зарплат", "salary", "maaş"},
		salaryMinAsked: 5,
		probeMinAsked:  3,
		openingTimeout: time.Second,
		genTimeout:     time.Second,
		polishTimeout:  time.Second,
	}
}

func testInterviewRec(status dbmodels.InterviewStatus, askedCount int) *dbmodels.Interview {
	rec := &dbmodels.Interview{
		VacancyID:   "vac-1",
		ApplicantID: "app-1",
		Status:      status,
		AskedCount:  askedCount,
		Vacancy: dbmodels.Vacancy{
			Name:        "Backend разработчик",
			JobTitle:    "Backend разработчик",
			Description: "Python, PostgreSQL",
		},
		Applicant: dbmodels.Applicant{
			FirstName:  "Анна",
			ResumeText: "Опыт разработки на Python",
		},
	}
	rec.ID = "int-1"
	return rec
}

const longAnswerText = "Я несколько лет проектировал и сопровождал сервисы на Python, отвечал за их надёжность и производительность в проде."

func TestNextQuestion(t *testing.T) {
	t.Run(`opening question check`, func(t *testing.T) {
		store := &fakeSessionStore{rec: testInterviewRec(dbmodels.InterviewCreated, 0)}
		ai := &stubAI{answers: map[string]string{
			string(dbmodels.AiOpeningQuestionType): "Здравствуйте! Расскажите про ваш опыт с Python.",
		}}
		i := newTestInterview(store, ai, &fakeRequirements{})

		result, err := i.NextQuestion(context.Background(), "int-1", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.False(t, result.Done)
		require.Equal(t, "Анна, расскажите про ваш опыт с Python.", result.Question)
		require.Equal(t, 0, result.LiveInsights.AskedCount)
	})

	t.Run(`unknown interview check`, func(t *testing.T) {
		store := &fakeSessionStore{}
		i := newTestInterview(store, &stubAI{}, &fakeRequirements{})

		_, err := i.NextQuestion(context.Background(), "нет-такого", interviewapimodels.TurnSignals{})
		require.ErrorIs(t, err, ErrInterviewNotFound)
	})

	t.Run(`salary answered finishes check`, func(t *testing.T) {
		store := &fakeSessionStore{rec: testInterviewRec(dbmodels.InterviewInProgress, 5)}
		for k := 0; k < 4; k++ {
			store.turns = append(store.turns,
				dbmodels.InterviewTurn{Role: dbmodels.TurnRoleAssistant, Text: "Вопрос по опыту", SeqNum: k*2 + 1},
				dbmodels.InterviewTurn{Role: dbmodels.TurnRoleUser, Text: longAnswerText, SeqNum: k*2 + 2},
			)
		}
		store.turns = append(store.turns,
			dbmodels.InterviewTurn{Role: dbmodels.TurnRoleAssistant, Text: "Maaş beklentiniz nedir?", SeqNum: 9},
			dbmodels.InterviewTurn{Role: dbmodels.TurnRoleUser, Text: "120000 TL", SeqNum: 10},
		)
		i := newTestInterview(store, &stubAI{}, &fakeRequirements{})

		result, err := i.NextQuestion(context.Background(), "int-1", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.True(t, result.Done)
		require.Empty(t, result.Question)
	})

	t.Run(`coverage stop check`, func(t *testing.T) {
		store := &fakeSessionStore{
			rec: testInterviewRec(dbmodels.InterviewInProgress, 5),
			turns: []dbmodels.InterviewTurn{
				{Role: dbmodels.TurnRoleAssistant, Text: "Вопрос", SeqNum: 1},
				{Role: dbmodels.TurnRoleUser, Text: longAnswerText, SeqNum: 2},
			},
		}
		i := newTestInterview(store, &stubAI{}, &fakeRequirements{stop: true})

		result, err := i.NextQuestion(context.Background(), "int-1", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.True(t, result.Done)
	})

	t.Run(`recruiter question asked verbatim check`, func(t *testing.T) {
		rec := testInterviewRec(dbmodels.InterviewInProgress, 1)
		rec.Vacancy.ExtraQuestions = []string{"Почему вы выбрали нашу компанию?"}
		store := &fakeSessionStore{
			rec: rec,
			turns: []dbmodels.InterviewTurn{
				{Role: dbmodels.TurnRoleAssistant, Text: "Расскажите о себе", SeqNum: 1},
				{Role: dbmodels.TurnRoleUser, Text: longAnswerText, SeqNum: 2},
			},
		}
		i := newTestInterview(store, &stubAI{}, &fakeRequirements{})

		result, err := i.NextQuestion(context.Background(), "int-1", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.False(t, result.Done)
		require.Equal(t, "Почему вы выбрали нашу компанию?", result.Question)
	})

	t.Run(`unusable generation falls back check`, func(t *testing.T) {
		store := &fakeSessionStore{
			rec: testInterviewRec(dbmodels.InterviewInProgress, 1),
			turns: []dbmodels.InterviewTurn{
				{Role: dbmodels.TurnRoleAssistant, Text: "Расскажите о себе", SeqNum: 1},
				{Role: dbmodels.TurnRoleUser, Text: longAnswerText, SeqNum: 2},
			},
		}
		ai := &stubAI{answers: map[string]string{
			string(dbmodels.AiNextQuestionType): "Посмотрите https://example.com и ответьте",
		}}
		i := newTestInterview(store, ai, &fakeRequirements{})

		result, err := i.NextQuestion(context.Background(), "int-1", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.False(t, result.Done)
		require.Equal(t, neutralFollowUpQuestion, result.Question)
	})

	t.Run(`finished interview stays done on reconnect check`, func(t *testing.T) {
		store := &fakeSessionStore{rec: testInterviewRec(dbmodels.InterviewFinished, 6)}
		ai := &stubAI{answers: map[string]string{
			string(dbmodels.AiNextQuestionType): "Какой у вас опыт с PostgreSQL?",
		}}
		i := newTestInterview(store, ai, &fakeRequirements{})

		result, err := i.NextQuestion(context.Background(), "int-1", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.True(t, result.Done)
		require.Empty(t, result.Question)

		store.rec.Status = dbmodels.InterviewAnalyzed
		result, err = i.NextQuestion(context.Background(), "int-1", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.True(t, result.Done)
	})

	t.Run(`repeat call gives same decision check`, func(t *testing.T) {
		store := &fakeSessionStore{
			rec: testInterviewRec(dbmodels.InterviewInProgress, 1),
			turns: []dbmodels.InterviewTurn{
				{Role: dbmodels.TurnRoleAssistant, Text: "Расскажите о себе", SeqNum: 1},
				{Role: dbmodels.TurnRoleUser, Text: longAnswerText, SeqNum: 2},
			},
		}
		ai := &stubAI{answers: map[string]string{
			string(dbmodels.AiNextQuestionType): "Какой у вас опыт с PostgreSQL?",
		}}
		i := newTestInterview(store, ai, &fakeRequirements{})

		first, err := i.NextQuestion(context.Background(), "int-1", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		second, err := i.NextQuestion(context.Background(), "int-1", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.Equal(t, first.Question, second.Question)
		// чистое решение ничего не сохраняет
		require.Len(t, store.turns, 2)
	})
}

func TestNextTurn(t *testing.T) {
	t.Run(`finished interview stays done check`, func(t *testing.T) {
		store := &fakeSessionStore{rec: testInterviewRec(dbmodels.InterviewFinished, 6)}
		i := newTestInterview(store, &stubAI{}, &fakeRequirements{})

		result, err := i.NextTurn(context.Background(), "int-1", "ещё один ответ", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.True(t, result.Done)
		// ответ после завершения не сохраняется
		require.Len(t, store.turns, 0)
	})

	t.Run(`answer saved and question appended check`, func(t *testing.T) {
		store := &fakeSessionStore{
			rec: testInterviewRec(dbmodels.InterviewInProgress, 1),
			turns: []dbmodels.InterviewTurn{
				{Role: dbmodels.TurnRoleAssistant, Text: "Расскажите о себе", SeqNum: 1},
			},
		}
		ai := &stubAI{answers: map[string]string{
			string(dbmodels.AiNextQuestionType): "Какой у вас опыт с PostgreSQL?",
		}}
		i := newTestInterview(store, ai, &fakeRequirements{})

		result, err := i.NextTurn(context.Background(), "int-1", longAnswerText, interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.False(t, result.Done)
		require.Equal(t, "Какой у вас опыт с PostgreSQL?", result.Question)
		require.Len(t, store.turns, 3)
		require.Equal(t, dbmodels.TurnRoleUser, store.turns[1].Role)
		require.Equal(t, 2, store.turns[1].SeqNum)
		require.Equal(t, dbmodels.TurnRoleAssistant, store.turns[2].Role)
		require.Equal(t, 3, store.turns[2].SeqNum)
		require.Equal(t, 2, store.rec.AskedCount)
		require.Equal(t, dbmodels.InterviewInProgress, store.rec.Status)
	})

	t.Run(`duplicate question suppressed check`, func(t *testing.T) {
		store := &fakeSessionStore{
			rec: testInterviewRec(dbmodels.InterviewInProgress, 1),
			turns: []dbmodels.InterviewTurn{
				{Role: dbmodels.TurnRoleAssistant, Text: "Какой у вас опыт с PostgreSQL?", SeqNum: 1},
			},
		}
		ai := &stubAI{answers: map[string]string{
			string(dbmodels.AiNextQuestionType): "Какой у вас опыт с PostgreSQL?",
		}}
		i := newTestInterview(store, ai, &fakeRequirements{})

		result, err := i.NextTurn(context.Background(), "int-1", longAnswerText, interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.Equal(t, "Какой у вас опыт с PostgreSQL?", result.Question)
		// только ответ кандидата, повторный вопрос не сохраняется
		require.Len(t, store.turns, 2)
		require.Equal(t, 1, store.rec.AskedCount)
	})

	t.Run(`seq conflict retried on next number check`, func(t *testing.T) {
		store := &fakeSessionStore{
			rec: testInterviewRec(dbmodels.InterviewInProgress, 1),
			turns: []dbmodels.InterviewTurn{
				{Role: dbmodels.TurnRoleAssistant, Text: "Расскажите о себе", SeqNum: 1},
			},
			conflicts: map[int]bool{2: true},
		}
		ai := &stubAI{answers: map[string]string{
			string(dbmodels.AiNextQuestionType): "Какой у вас опыт с PostgreSQL?",
		}}
		i := newTestInterview(store, ai, &fakeRequirements{})

		_, err := i.NextTurn(context.Background(), "int-1", longAnswerText, interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.Equal(t, dbmodels.TurnRoleUser, store.turns[1].Role)
		require.Equal(t, 3, store.turns[1].SeqNum)
	})

	t.Run(`salary answer finishes interview check`, func(t *testing.T) {
		store := &fakeSessionStore{rec: testInterviewRec(dbmodels.InterviewInProgress, 5)}
		for k := 0; k < 4; k++ {
			store.turns = append(store.turns,
				dbmodels.InterviewTurn{Role: dbmodels.TurnRoleAssistant, Text: "Вопрос по опыту", SeqNum: k*2 + 1},
				dbmodels.InterviewTurn{Role: dbmodels.TurnRoleUser, Text: longAnswerText, SeqNum: k*2 + 2},
			)
		}
		store.turns = append(store.turns,
			dbmodels.InterviewTurn{Role: dbmodels.TurnRoleAssistant, Text: "Maaş beklentiniz nedir?", SeqNum: 9})
		i := newTestInterview(store, &stubAI{}, &fakeRequirements{})

		result, err := i.NextTurn(context.Background(), "int-1", "120000 TL", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.True(t, result.Done)
		require.Equal(t, dbmodels.InterviewFinished, store.rec.Status)
	})

	t.Run(`distracted signals trigger probe check`, func(t *testing.T) {
		store := &fakeSessionStore{
			rec: testInterviewRec(dbmodels.InterviewInProgress, 3),
			turns: []dbmodels.InterviewTurn{
				{Role: dbmodels.TurnRoleAssistant, Text: "Расскажите о себе", SeqNum: 1},
				{Role: dbmodels.TurnRoleUser, Text: longAnswerText, SeqNum: 2},
				{Role: dbmodels.TurnRoleAssistant, Text: "Что делали на прошлой работе?", SeqNum: 3},
				{Role: dbmodels.TurnRoleUser, Text: longAnswerText, SeqNum: 4},
				{Role: dbmodels.TurnRoleAssistant, Text: "Какие технологии знаете?", SeqNum: 5},
			},
		}
		ai := &stubAI{answers: map[string]string{
			string(dbmodels.AiNextQuestionType):  "Общий вопрос про карьеру?",
			string(dbmodels.AiWeaknessProbeType): "Опишите, как вы настраивали репликацию PostgreSQL?",
		}}
		req := &fakeRequirements{items: []requirementapimodels.RequirementItem{
			{Label: "PostgreSQL", Must: true, Keywords: []string{"postgresql"}},
		}}
		i := newTestInterview(store, ai, req)

		// ответы содержательные, но кандидат переключал вкладку
		result, err := i.NextTurn(context.Background(), "int-1", longAnswerText,
			interviewapimodels.TurnSignals{TabSwitched: true})
		require.Nil(t, err)
		require.True(t, result.LiveInsights.WeakSignal)
		require.Equal(t, "Опишите, как вы настраивали репликацию PostgreSQL?", result.Question)
	})

	t.Run(`weak answers trigger probe check`, func(t *testing.T) {
		rec := testInterviewRec(dbmodels.InterviewInProgress, 3)
		store := &fakeSessionStore{
			rec: rec,
			turns: []dbmodels.InterviewTurn{
				{Role: dbmodels.TurnRoleAssistant, Text: "Расскажите о себе", SeqNum: 1},
				{Role: dbmodels.TurnRoleUser, Text: "Да", SeqNum: 2},
				{Role: dbmodels.TurnRoleAssistant, Text: "Что делали на прошлой работе?", SeqNum: 3},
				{Role: dbmodels.TurnRoleUser, Text: "Не помню", SeqNum: 4},
				{Role: dbmodels.TurnRoleAssistant, Text: "Какие технологии знаете?", SeqNum: 5},
			},
		}
		ai := &stubAI{answers: map[string]string{
			string(dbmodels.AiNextQuestionType):  "Общий вопрос про карьеру?",
			string(dbmodels.AiWeaknessProbeType): "Опишите, как вы настраивали репликацию PostgreSQL?",
		}}
		req := &fakeRequirements{items: []requirementapimodels.RequirementItem{
			{Label: "PostgreSQL", Must: true, Keywords: []string{"postgresql"}},
		}}
		i := newTestInterview(store, ai, req)

		turnResult, err := i.NextTurn(context.Background(), "int-1", "Сложно", interviewapimodels.TurnSignals{})
		require.Nil(t, err)
		require.True(t, turnResult.LiveInsights.WeakSignal)
		require.Equal(t, "Опишите, как вы настраивали репликацию PostgreSQL?", turnResult.Question)
		require.Equal(t, 1, store.rec.AskedByRequirement["PostgreSQL"])
	})
}
