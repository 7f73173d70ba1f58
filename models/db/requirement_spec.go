package dbmodels

import (
	"database/sql/driver"
	"encoding/json"

	requirementapimodels "hr-interview-backend/models/api/requirements"
)

// RequirementSpec - нормализованный список требований вакансии,
// формируется один раз и далее только читается
type RequirementSpec struct {
	BaseModel
	VacancyID string           `gorm:"type:varchar(36);uniqueIndex"`
	Items     RequirementItems `gorm:"type:jsonb"`
}

type RequirementItems []requirementapimodels.RequirementItem

func (j RequirementItems) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *RequirementItems) Scan(value interface{}) error {
	if err := json.Unmarshal(value.([]byte), &j); err != nil {
		return err
	}
	return nil
}
