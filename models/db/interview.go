package dbmodels

import (
	"database/sql/driver"
	"encoding/json"

	requirementapimodels "hr-interview-backend/models/api/requirements"
)

type InterviewStatus string

const (
	InterviewCreated    InterviewStatus = "created"     // ссылка сформирована, вопросов ещё не было
	InterviewInProgress InterviewStatus = "in_progress" // идёт диалог
	InterviewFinished   InterviewStatus = "finished"    // сработало условие завершения
	InterviewAnalyzed   InterviewStatus = "analyzed"    // итоговый отчёт сформирован
)

type Interview struct {
	BaseModel
	VacancyID          string          `gorm:"type:varchar(36);index"`
	ApplicantID        string          `gorm:"type:varchar(36);index"`
	Status             InterviewStatus `gorm:"type:varchar(32)"`
	AskedCount         int             // количество заданных вопросов
	AskedByRequirement AskedCountMap   `gorm:"type:jsonb"` // метка требования -> сколько раз спрашивали
	Coverage           CoverageColumn  `gorm:"type:jsonb"` // текущая матрица покрытия требований

	Vacancy   Vacancy   `gorm:"foreignKey:VacancyID"`
	Applicant Applicant `gorm:"foreignKey:ApplicantID"`
}

type TurnRole string

const (
	TurnRoleAssistant TurnRole = "assistant"
	TurnRoleUser      TurnRole = "user"
	TurnRoleSystem    TurnRole = "system"
)

// InterviewTurn - реплика диалога.
// Порядок реплик определяется только SeqNum, уникальный индекс по (interview_id, seq_num)
// даёт обнаружение конфликта при параллельной вставке
type InterviewTurn struct {
	BaseModel
	InterviewID string   `gorm:"type:varchar(36);uniqueIndex:idx_interview_turn_seq"`
	SeqNum      int      `gorm:"uniqueIndex:idx_interview_turn_seq"`
	Role        TurnRole `gorm:"type:varchar(16)"`
	Text        string
}

type AskedCountMap map[string]int

func (j AskedCountMap) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *AskedCountMap) Scan(value interface{}) error {
	if err := json.Unmarshal(value.([]byte), &j); err != nil {
		return err
	}
	return nil
}

type CoverageColumn requirementapimodels.CoverageMatrix

func (j CoverageColumn) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *CoverageColumn) Scan(value interface{}) error {
	if err := json.Unmarshal(value.([]byte), &j); err != nil {
		return err
	}
	return nil
}
