package interview

import (
	"testing"

	"github.com/stretchr/testify/require"

	interviewapimodels "hr-interview-backend/models/api/interview"
	dbmodels "hr-interview-backend/models/db"
)

func TestSanitizeQuestion(t *testing.T) {
	t.Run(`clean question untouched check`, func(t *testing.T) {
		question := "Расскажите о вашем последнем проекте на Python?"
		require.Equal(t, question, sanitizeQuestion(question))
	})

	t.Run(`quotes and sentinel stripped check`, func(t *testing.T) {
		require.Equal(t, "Какой у вас опыт с Docker?", sanitizeQuestion(`"Какой у вас опыт с Docker?"`))
		require.Equal(t, "Какой у вас опыт с Docker?", sanitizeQuestion("«Какой у вас опыт с Docker?»"))
		require.Equal(t, "", sanitizeQuestion("FINISHED"))
	})

	t.Run(`contacts and links rejected check`, func(t *testing.T) {
		require.Equal(t, "", sanitizeQuestion("Посмотрите https://example.com и ответьте"))
		require.Equal(t, "", sanitizeQuestion("Напишите на hr@example.com"))
		require.Equal(t, "", sanitizeQuestion("Позвоните по +7 999 123-45-67 нам"))
		require.Equal(t, "", sanitizeQuestion("   "))
	})
}

func TestFinishedSignal(t *testing.T) {
	t.Run(`finished detection check`, func(t *testing.T) {
		require.True(t, isFinishedSignal("FINISHED"))
		require.True(t, isFinishedSignal("  finished  "))
		require.True(t, isFinishedSignal(""))
		require.False(t, isFinishedSignal("Вопрос про FINISHED проекты"))
	})
}

func TestPersonalize(t *testing.T) {
	t.Run(`name prefix check`, func(t *testing.T) {
		require.Equal(t, "Анна, расскажите о вашем опыте.", personalize("Расскажите о вашем опыте.", "Анна"))
	})

	t.Run(`existing name kept check`, func(t *testing.T) {
		question := "Анна, какой у вас опыт?"
		require.Equal(t, question, personalize(question, "Анна"))
	})

	t.Run(`empty name untouched check`, func(t *testing.T) {
		question := "Какой у вас опыт?"
		require.Equal(t, question, personalize(question, ""))
	})
}

func TestStripGreeting(t *testing.T) {
	t.Run(`greeting removed check`, func(t *testing.T) {
		require.Equal(t, "Расскажите о себе.", stripGreeting("Здравствуйте! Расскажите о себе."))
		require.Equal(t, "Расскажите о себе.", stripGreeting("Добрый день, Расскажите о себе."))
		require.Equal(t, "Расскажите о себе.", stripGreeting("Расскажите о себе."))
	})
}

func TestSalaryQuestionAnswered(t *testing.T) {
	keywords := []string{"зарплат", "salary", "maaş"}

	t.Run(`turkish salary scenario check`, func(t *testing.T) {
		turns := []dbmodels.InterviewTurn{
			{Role: dbmodels.TurnRoleAssistant, Text: "Hangi projelerde çalıştınız?", SeqNum: 1},
			{Role: dbmodels.TurnRoleUser, Text: "Backend projelerinde", SeqNum: 2},
			{Role: dbmodels.TurnRoleAssistant, Text: "Maaş beklentiniz nedir?", SeqNum: 3},
		}
		require.False(t, salaryQuestionAnswered(turns, keywords))

		turns = append(turns, dbmodels.InterviewTurn{Role: dbmodels.TurnRoleUser, Text: "120000 TL", SeqNum: 4})
		require.True(t, salaryQuestionAnswered(turns, keywords))
	})

	t.Run(`salary word from candidate does not count check`, func(t *testing.T) {
		turns := []dbmodels.InterviewTurn{
			{Role: dbmodels.TurnRoleAssistant, Text: "Расскажите о проекте", SeqNum: 1},
			{Role: dbmodels.TurnRoleUser, Text: "Хочу обсудить зарплату", SeqNum: 2},
		}
		require.False(t, salaryQuestionAnswered(turns, keywords))
	})
}

func TestWeakSignal(t *testing.T) {
	longAnswer := "Я отвечал за проектирование и развитие сервиса обработки откликов, писал его на Go и сопровождал в проде несколько лет."

	t.Run(`short answers trigger check`, func(t *testing.T) {
		turns := []dbmodels.InterviewTurn{
			{Role: dbmodels.TurnRoleUser, Text: "Да"},
			{Role: dbmodels.TurnRoleUser, Text: "Не помню"},
		}
		require.True(t, weakSignal(turns))
	})

	t.Run(`uncertainty markers trigger check`, func(t *testing.T) {
		turns := []dbmodels.InterviewTurn{
			{Role: dbmodels.TurnRoleUser, Text: longAnswer + " Наверное, я бы сделал иначе."},
			{Role: dbmodels.TurnRoleUser, Text: longAnswer + " Сложно сказать, не уверен."},
		}
		require.True(t, weakSignal(turns))
	})

	t.Run(`confident answers pass check`, func(t *testing.T) {
		turns := []dbmodels.InterviewTurn{
			{Role: dbmodels.TurnRoleUser, Text: longAnswer},
			{Role: dbmodels.TurnRoleUser, Text: longAnswer},
		}
		require.False(t, weakSignal(turns))
	})

	t.Run(`no user turns check`, func(t *testing.T) {
		require.False(t, weakSignal(nil))
	})
}

func TestDistractedSignals(t *testing.T) {
	t.Run(`tab switch triggers check`, func(t *testing.T) {
		require.True(t, distractedSignals(interviewapimodels.TurnSignals{TabSwitched: true}))
	})

	t.Run(`hasty answer triggers check`, func(t *testing.T) {
		require.True(t, distractedSignals(interviewapimodels.TurnSignals{AnswerDurationSec: 2}))
	})

	t.Run(`normal pace passes check`, func(t *testing.T) {
		require.False(t, distractedSignals(interviewapimodels.TurnSignals{AnswerDurationSec: 40}))
		// длительность не передана - сигнала нет
		require.False(t, distractedSignals(interviewapimodels.TurnSignals{}))
	})
}

func TestQuestionAlreadyAsked(t *testing.T) {
	turns := []dbmodels.InterviewTurn{
		{Role: dbmodels.TurnRoleAssistant, Text: "Анна, почему вы выбрали нашу компанию?"},
	}

	t.Run(`asked verbatim or inside check`, func(t *testing.T) {
		require.True(t, questionAlreadyAsked(turns, "Почему вы выбрали нашу компанию?"))
		require.False(t, questionAlreadyAsked(turns, "Какой график вам удобен?"))
	})
}
