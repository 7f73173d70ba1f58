package assessmentstore

import (
	dbmodels "hr-interview-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	GetByInterviewID(interviewID string) (*dbmodels.Assessment, error)
	// Save перезаписывает отчёт по интервью, запись на интервью одна
	Save(rec dbmodels.Assessment) (string, error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetByInterviewID(interviewID string) (*dbmodels.Assessment, error) {
	rec := dbmodels.Assessment{}
	err := i.db.
		Where("interview_id = ?", interviewID).
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

func (i impl) Save(rec dbmodels.Assessment) (string, error) {
	existing, err := i.GetByInterviewID(rec.InterviewID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	}
	err = i.db.
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}
