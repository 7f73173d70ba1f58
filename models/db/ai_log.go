package dbmodels

type AiLog struct {
	BaseModel
	SysPromt    string       `comment:"System промт"`
	UserPromt   string       `comment:"User промт"`
	Answer      string       `comment:"Ответ ИИ"`
	InterviewID string       `gorm:"type:varchar(36)" comment:"Идентификатор интервью"`
	ReqestType  AiReqestType `gorm:"type:varchar(255)" comment:"Тип запроса к ИИ"`
	AiName      string       `gorm:"type:varchar(255)" comment:"Название провайдера"`
	Cached      bool         `comment:"Ответ взят из кеша"`
	LatencyMs   int64        `comment:"Длительность запроса"`
}

type AiReqestType string

const (
	AiOpeningQuestionType AiReqestType = "OpeningQuestion"
	AiNextQuestionType    AiReqestType = "NextQuestion"
	AiWeaknessProbeType   AiReqestType = "WeaknessProbe"
	AiPolishType          AiReqestType = "Polish"
	AiRequirementsType    AiReqestType = "Requirements"
	AiCriteriaScoringType AiReqestType = "CriteriaScoring"
	AiJobFitMatrixType    AiReqestType = "JobFitMatrix"
	AiHiringDecisionType  AiReqestType = "HiringDecision"
)
