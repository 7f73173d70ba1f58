package applicanthandler

import (
	"github.com/pkg/errors"

	"hr-interview-backend/db"
	applicantstore "hr-interview-backend/lib/applicant/store"
	applicantapimodels "hr-interview-backend/models/api/applicant"
	dbmodels "hr-interview-backend/models/db"
)

type Provider interface {
	Create(data applicantapimodels.ApplicantData) (string, error)
	GetByID(id string) (*applicantapimodels.ApplicantView, error)
}

var Instance Provider

func NewHandler() {
	Instance = &impl{
		store: applicantstore.NewInstance(db.DB),
	}
}

type impl struct {
	store applicantstore.Provider
}

func (i impl) Create(data applicantapimodels.ApplicantData) (string, error) {
	rec := dbmodels.Applicant{
		FirstName:  data.FirstName,
		LastName:   data.LastName,
		Email:      data.Email,
		ResumeText: data.ResumeText,
	}
	id, err := i.store.Save(rec)
	if err != nil {
		return "", errors.Wrap(err, "ошибка сохранения кандидата")
	}
	return id, nil
}

func (i impl) GetByID(id string) (*applicantapimodels.ApplicantView, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения кандидата")
	}
	if rec == nil {
		return nil, nil
	}
	view := applicantapimodels.ApplicantConvert(*rec)
	return &view, nil
}
