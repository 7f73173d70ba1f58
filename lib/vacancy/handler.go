package vacancyhandler

import (
	"github.com/pkg/errors"

	"hr-interview-backend/db"
	vacancystore "hr-interview-backend/lib/vacancy/store"
	vacancyapimodels "hr-interview-backend/models/api/vacancy"
	dbmodels "hr-interview-backend/models/db"
)

type Provider interface {
	Create(data vacancyapimodels.VacancyData) (string, error)
	GetByID(id string) (*vacancyapimodels.VacancyView, error)
	GetRec(id string) (*dbmodels.Vacancy, error)
}

var Instance Provider

func NewHandler() {
	Instance = &impl{
		store: vacancystore.NewInstance(db.DB),
	}
}

type impl struct {
	store vacancystore.Provider
}

func (i impl) Create(data vacancyapimodels.VacancyData) (string, error) {
	rec := dbmodels.Vacancy{
		Name:           data.Name,
		JobTitle:       data.JobTitle,
		Description:    data.Description,
		ExtraQuestions: data.ExtraQuestions,
	}
	id, err := i.store.Save(rec)
	if err != nil {
		return "", errors.Wrap(err, "ошибка сохранения вакансии")
	}
	return id, nil
}

func (i impl) GetByID(id string) (*vacancyapimodels.VacancyView, error) {
	rec, err := i.GetRec(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	view := vacancyapimodels.VacancyConvert(*rec)
	return &view, nil
}

func (i impl) GetRec(id string) (*dbmodels.Vacancy, error) {
	rec, err := i.store.GetByID(id)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения вакансии")
	}
	return rec, nil
}
