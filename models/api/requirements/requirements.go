package requirementapimodels

// RequirementItem - нормализованное требование вакансии.
// Формируется один раз по описанию вакансии и не меняется в течение интервью
type RequirementItem struct {
	ID                string   `json:"id"`
	Label             string   `json:"label"`
	Must              bool     `json:"must"`   // обязательное требование
	Weight            float64  `json:"weight"` // 0..1, сумма в группе нормализована к 1
	Keywords          []string `json:"keywords"`
	Rubric            string   `json:"rubric"` // критерий успешного ответа
	QuestionTemplates []string `json:"question_templates"`
}

type CoverageMeets string

const (
	CoverageYes     CoverageMeets = "yes"
	CoveragePartial CoverageMeets = "partial"
	CoverageNo      CoverageMeets = "no"
)

type CoverageSource string

const (
	CoverageSourceCV        CoverageSource = "cv"
	CoverageSourceInterview CoverageSource = "interview"
	CoverageSourceBoth      CoverageSource = "both"
	CoverageSourceNeither   CoverageSource = "neither"
)

// CoverageEntry - насколько кандидат подтвердил требование
type CoverageEntry struct {
	Meets      CoverageMeets  `json:"meets"`
	Source     CoverageSource `json:"source"`
	Evidence   string         `json:"evidence"`
	Confidence float64        `json:"confidence"` // 0..1
}

// CoverageMatrix - метка требования -> оценка покрытия
type CoverageMatrix map[string]CoverageEntry
