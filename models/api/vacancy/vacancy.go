package vacancyapimodels

import (
	"github.com/pkg/errors"

	dbmodels "hr-interview-backend/models/db"
)

type VacancyData struct {
	Name        string `json:"name"`
	JobTitle    string `json:"job_title"`
	Description string `json:"description"`
	// вопросы рекрутёра, задаются кандидату дословно
	ExtraQuestions []string `json:"extra_questions"`
}

func (d VacancyData) Validate() error {
	if d.Name == "" {
		return errors.New("не указано название вакансии")
	}
	if d.Description == "" {
		return errors.New("не указано описание вакансии")
	}
	return nil
}

type VacancyView struct {
	ID string `json:"id"`
	VacancyData
}

func VacancyConvert(rec dbmodels.Vacancy) VacancyView {
	return VacancyView{
		ID: rec.ID,
		VacancyData: VacancyData{
			Name:           rec.Name,
			JobTitle:       rec.JobTitle,
			Description:    rec.Description,
			ExtraQuestions: rec.ExtraQuestions,
		},
	}
}
