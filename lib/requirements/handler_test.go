package requirements

import (
	"testing"

	"github.com/stretchr/testify/require"

	requirementapimodels "hr-interview-backend/models/api/requirements"
)

func testPolicy() StopPolicy {
	return StopPolicy{
		MinPositive:       5,
		MinNegative:       3,
		MinMixed:          7,
		LowScoreThreshold: 40,
	}
}

func TestNormalizeItems(t *testing.T) {
	t.Run(`defaults filled check`, func(t *testing.T) {
		items := normalizeItems([]requirementapimodels.RequirementItem{
			{Label: "Python"},
			{Label: "  "},
			{Label: "PostgreSQL", Weight: 7},
		})
		require.Len(t, items, 2)
		for _, item := range items {
			require.NotEmpty(t, item.ID)
			require.NotEmpty(t, item.Keywords)
			require.NotEmpty(t, item.QuestionTemplates)
		}
		require.Equal(t, []string{"python"}, items[0].Keywords)
	})

	t.Run(`group weights sum to one check`, func(t *testing.T) {
		items := normalizeItems([]requirementapimodels.RequirementItem{
			{Label: "Python", Must: true, Weight: 0.8},
			{Label: "Docker", Must: true, Weight: 0.8},
			{Label: "Английский", Weight: 0.5},
			{Label: "Kubernetes", Weight: 1.5},
		})
		require.Len(t, items, 4)
		require.InDelta(t, 0.5, items[0].Weight, 0.001)
		require.InDelta(t, 0.5, items[1].Weight, 0.001)

		sumOptional := items[2].Weight + items[3].Weight
		require.InDelta(t, 1.0, sumOptional, 0.001)
		// вес выше 1 обрезается до нормализации
		require.InDelta(t, items[2].Weight, items[3].Weight, 0.5)
	})
}

func TestParseRequirements(t *testing.T) {
	t.Run(`json with fence check`, func(t *testing.T) {
		answer := "```json\n{\"requirements\":[{\"label\":\"Python\",\"must\":true,\"weight\":0.7}]}\n```"
		items, err := parseRequirements(answer)
		require.Nil(t, err)
		require.Len(t, items, 1)
		require.Equal(t, "Python", items[0].Label)
		require.True(t, items[0].Must)
	})

	t.Run(`schema violation rejected check`, func(t *testing.T) {
		_, err := parseRequirements(`{"requirements":[{"must":true}]}`)
		require.NotNil(t, err)

		_, err = parseRequirements(`не json`)
		require.NotNil(t, err)
	})
}

func TestHeuristicRequirements(t *testing.T) {
	t.Run(`frequency based extraction check`, func(t *testing.T) {
		description := `Требуется senior python разработчик.
Коммерческий python от 3 лет, postgresql, docker, aws.
Python - основной язык команды.`
		items := heuristicRequirements(description)
		require.NotEmpty(t, items)
		require.LessOrEqual(t, len(items), heuristicMaxItems)
		// самый частотный токен становится первым требованием
		require.Equal(t, "python", items[0].Label)
		for _, item := range items {
			require.NotEmpty(t, item.ID)
			require.NotEmpty(t, item.Keywords)
		}
	})

	t.Run(`stopwords and short tokens dropped check`, func(t *testing.T) {
		items := heuristicRequirements("Опыт работы для компании: go и sql")
		for _, item := range items {
			require.NotEqual(t, "опыт", item.Label)
			require.NotEqual(t, "для", item.Label)
			require.NotEqual(t, "go", item.Label)
		}
	})
}

func TestUpdateCoverage(t *testing.T) {
	i := impl{policy: testPolicy()}

	t.Run(`lower confidence does not overwrite check`, func(t *testing.T) {
		matrix := requirementapimodels.CoverageMatrix{
			"Python": {Meets: requirementapimodels.CoverageYes, Source: requirementapimodels.CoverageSourceInterview, Confidence: 0.8},
		}
		updates := requirementapimodels.CoverageMatrix{
			"Python": {Meets: requirementapimodels.CoveragePartial, Source: requirementapimodels.CoverageSourceInterview, Confidence: 0.3},
		}
		result := i.UpdateCoverage(matrix, updates)
		require.Equal(t, requirementapimodels.CoverageYes, result["Python"].Meets)
		require.InDelta(t, 0.8, result["Python"].Confidence, 0.001)
	})

	t.Run(`cross source confirmation check`, func(t *testing.T) {
		matrix := requirementapimodels.CoverageMatrix{
			"Python": {Meets: requirementapimodels.CoveragePartial, Source: requirementapimodels.CoverageSourceCV, Confidence: 0.3},
		}
		updates := requirementapimodels.CoverageMatrix{
			"Python": {Meets: requirementapimodels.CoverageYes, Source: requirementapimodels.CoverageSourceInterview, Confidence: 0.6},
		}
		result := i.UpdateCoverage(matrix, updates)
		require.Equal(t, requirementapimodels.CoverageYes, result["Python"].Meets)
		require.Equal(t, requirementapimodels.CoverageSourceBoth, result["Python"].Source)
	})

	t.Run(`entries never removed check`, func(t *testing.T) {
		matrix := requirementapimodels.CoverageMatrix{
			"Python":     {Meets: requirementapimodels.CoverageYes, Confidence: 0.8},
			"PostgreSQL": {Meets: requirementapimodels.CoveragePartial, Confidence: 0.3},
		}
		result := i.UpdateCoverage(matrix, requirementapimodels.CoverageMatrix{
			"Docker": {Meets: requirementapimodels.CoverageNo, Confidence: 0.5},
		})
		require.Len(t, result, 3)
	})
}

func TestMatchEvidence(t *testing.T) {
	i := impl{policy: testPolicy()}
	items := []requirementapimodels.RequirementItem{
		{Label: "Python backend", Keywords: []string{"python", "fastapi"}},
		{Label: "PostgreSQL", Keywords: []string{"postgresql", "индексы"}},
		{Label: "Kubernetes", Keywords: []string{"kubernetes", "helm"}},
	}

	t.Run(`hits map to coverage levels check`, func(t *testing.T) {
		answer := "Писал сервисы на Python с FastAPI, базы на PostgreSQL"
		result := i.MatchEvidence(items, answer, requirementapimodels.CoverageSourceInterview)

		require.Equal(t, requirementapimodels.CoverageYes, result["Python backend"].Meets)
		require.Equal(t, requirementapimodels.CoveragePartial, result["PostgreSQL"].Meets)
		_, ok := result["Kubernetes"]
		require.False(t, ok)
		require.Equal(t, requirementapimodels.CoverageSourceInterview, result["Python backend"].Source)
	})

	t.Run(`resume source preserved check`, func(t *testing.T) {
		result := i.MatchEvidence(items, "python разработчик", requirementapimodels.CoverageSourceCV)
		require.Equal(t, requirementapimodels.CoverageSourceCV, result["Python backend"].Source)
	})

	t.Run(`empty text gives empty matrix check`, func(t *testing.T) {
		result := i.MatchEvidence(items, "   ", requirementapimodels.CoverageSourceInterview)
		require.Empty(t, result)
	})
}

func TestCriticalLabels(t *testing.T) {
	i := impl{policy: testPolicy()}

	t.Run(`must items win check`, func(t *testing.T) {
		labels := i.CriticalLabels([]requirementapimodels.RequirementItem{
			{Label: "Python", Must: true, Weight: 0.1},
			{Label: "Docker", Weight: 0.9},
		})
		require.Equal(t, []string{"Python"}, labels)
	})

	t.Run(`top by weight without must check`, func(t *testing.T) {
		labels := i.CriticalLabels([]requirementapimodels.RequirementItem{
			{Label: "Python", Weight: 0.4},
			{Label: "Docker", Weight: 0.1},
			{Label: "PostgreSQL", Weight: 0.3},
			{Label: "Kubernetes", Weight: 0.2},
		})
		require.Equal(t, []string{"Python", "PostgreSQL", "Kubernetes"}, labels)
	})
}

func TestShouldStopForCoverage(t *testing.T) {
	i := impl{policy: testPolicy()}
	items := []requirementapimodels.RequirementItem{
		{Label: "Python", Must: true},
		{Label: "PostgreSQL", Must: true},
	}
	yes := requirementapimodels.CoverageEntry{Meets: requirementapimodels.CoverageYes}
	no := requirementapimodels.CoverageEntry{Meets: requirementapimodels.CoverageNo}
	partial := requirementapimodels.CoverageEntry{Meets: requirementapimodels.CoveragePartial}

	t.Run(`all critical covered check`, func(t *testing.T) {
		matrix := requirementapimodels.CoverageMatrix{"Python": yes, "PostgreSQL": yes}
		require.False(t, i.ShouldStopForCoverage(items, matrix, 4, -1))
		require.True(t, i.ShouldStopForCoverage(items, matrix, 5, -1))
		// решение не откатывается при дальнейших вопросах
		require.True(t, i.ShouldStopForCoverage(items, matrix, 9, -1))
	})

	t.Run(`critical gap check`, func(t *testing.T) {
		matrix := requirementapimodels.CoverageMatrix{"Python": no, "PostgreSQL": yes}
		require.False(t, i.ShouldStopForCoverage(items, matrix, 2, -1))
		require.True(t, i.ShouldStopForCoverage(items, matrix, 3, -1))
	})

	t.Run(`mixed weak picture check`, func(t *testing.T) {
		matrix := requirementapimodels.CoverageMatrix{"Python": partial, "PostgreSQL": partial}
		require.False(t, i.ShouldStopForCoverage(items, matrix, 7, 55))
		require.False(t, i.ShouldStopForCoverage(items, matrix, 6, 35))
		require.False(t, i.ShouldStopForCoverage(items, matrix, 7, -1))
		require.True(t, i.ShouldStopForCoverage(items, matrix, 7, 35))
	})

	t.Run(`unknown coverage keeps going check`, func(t *testing.T) {
		require.False(t, i.ShouldStopForCoverage(items, requirementapimodels.CoverageMatrix{}, 10, -1))
		require.False(t, i.ShouldStopForCoverage(nil, requirementapimodels.CoverageMatrix{}, 10, -1))
	})
}
