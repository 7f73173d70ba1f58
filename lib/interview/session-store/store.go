package sessionstore

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	dbmodels "hr-interview-backend/models/db"
)

// ErrTurnConflict - порядковый номер реплики уже занят параллельной вставкой
var ErrTurnConflict = errors.New("реплика с таким порядковым номером уже существует")

type Provider interface {
	GetInterview(id string) (*dbmodels.Interview, error)
	SaveInterview(rec dbmodels.Interview) (string, error)
	ListByStatus(status dbmodels.InterviewStatus) ([]dbmodels.Interview, error)
	// LoadTurns возвращает реплики в порядке возрастания seq_num
	LoadTurns(interviewID string) ([]dbmodels.InterviewTurn, error)
	// AppendTurn вставляет реплику на заданный seq_num,
	// при занятом номере возвращает ErrTurnConflict
	AppendTurn(turn dbmodels.InterviewTurn) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) GetInterview(id string) (*dbmodels.Interview, error) {
	rec := dbmodels.Interview{}
	err := i.db.
		Preload("Vacancy").
		Preload("Applicant").
		Where("id = ?", id).
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

func (i impl) SaveInterview(rec dbmodels.Interview) (string, error) {
	err := i.db.
		Omit("Vacancy", "Applicant").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) ListByStatus(status dbmodels.InterviewStatus) ([]dbmodels.Interview, error) {
	list := []dbmodels.Interview{}
	err := i.db.
		Preload("Vacancy").
		Preload("Applicant").
		Where("status = ?", status).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) LoadTurns(interviewID string) ([]dbmodels.InterviewTurn, error) {
	list := []dbmodels.InterviewTurn{}
	err := i.db.
		Where("interview_id = ?", interviewID).
		Order("seq_num ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) AppendTurn(turn dbmodels.InterviewTurn) error {
	err := i.db.
		Create(&turn).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(err.Error(), "duplicate key") {
			return ErrTurnConflict
		}
		return err
	}
	return nil
}
