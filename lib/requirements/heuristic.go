package requirements

import (
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"

	requirementapimodels "hr-interview-backend/models/api/requirements"
)

const heuristicMaxItems = 12

// стоп-слова для эвристики по тексту вакансии (ru/en/tr)
var stopwords = map[string]bool{
	"или": true, "для": true, "это": true, "как": true, "что": true, "при": true,
	"будет": true, "работы": true, "работа": true, "опыт": true, "знание": true,
	"требования": true, "обязанности": true, "условия": true, "компания": true,
	"the": true, "and": true, "for": true, "with": true, "you": true, "will": true,
	"our": true, "are": true, "this": true, "that": true, "have": true, "from": true,
	"work": true, "experience": true, "knowledge": true, "skills": true,
	"bir": true, "ile": true, "için": true, "olarak": true, "deneyim": true,
}

// heuristicRequirements - запасной разбор описания вакансии без ИИ:
// частотный список токенов длиной от 3 символов, без стоп-слов,
// не более heuristicMaxItems уникальных
func heuristicRequirements(jobDescription string) []requirementapimodels.RequirementItem {
	counts := map[string]int{}
	order := map[string]int{}
	pos := 0
	for _, token := range tokenize(jobDescription) {
		if len([]rune(token)) < 3 || stopwords[token] {
			continue
		}
		if _, ok := counts[token]; !ok {
			order[token] = pos
			pos++
		}
		counts[token]++
	}

	tokens := make([]string, 0, len(counts))
	for token := range counts {
		tokens = append(tokens, token)
	}
	// по убыванию частоты, при равенстве - по порядку появления в тексте
	sort.SliceStable(tokens, func(a, b int) bool {
		if counts[tokens[a]] != counts[tokens[b]] {
			return counts[tokens[a]] > counts[tokens[b]]
		}
		return order[tokens[a]] < order[tokens[b]]
	})
	if len(tokens) > heuristicMaxItems {
		tokens = tokens[:heuristicMaxItems]
	}

	items := make([]requirementapimodels.RequirementItem, 0, len(tokens))
	for _, token := range tokens {
		items = append(items, requirementapimodels.RequirementItem{
			ID:       uuid.NewString(),
			Label:    token,
			Weight:   defaultWeight,
			Keywords: []string{token},
		})
	}
	return normalizeItems(items)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}
