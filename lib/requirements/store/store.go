package requirementstore

import (
	dbmodels "hr-interview-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	GetByVacancyID(vacancyID string) (*dbmodels.RequirementSpec, error)
	Save(rec dbmodels.RequirementSpec) (string, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetByVacancyID(vacancyID string) (*dbmodels.RequirementSpec, error) {
	rec := dbmodels.RequirementSpec{}
	err := i.db.
		Where("vacancy_id = ?", vacancyID).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) Save(rec dbmodels.RequirementSpec) (string, error) {
	err := i.db.
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}
