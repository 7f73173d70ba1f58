package dbmodels

import (
	"database/sql/driver"
	"encoding/json"

	analysisapimodels "hr-interview-backend/models/api/analysis"
)

// Assessment - итоговый отчёт по интервью, одна запись на интервью.
// Повторный анализ перезаписывает payload целиком
type Assessment struct {
	BaseModel
	InterviewID string            `gorm:"type:varchar(36);uniqueIndex"`
	Payload     AssessmentPayload `gorm:"type:jsonb"`
}

type AssessmentPayload analysisapimodels.AssessmentResult

func (j AssessmentPayload) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *AssessmentPayload) Scan(value interface{}) error {
	if err := json.Unmarshal(value.([]byte), &j); err != nil {
		return err
	}
	return nil
}
