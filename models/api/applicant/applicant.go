package applicantapimodels

import (
	"github.com/pkg/errors"

	dbmodels "hr-interview-backend/models/db"
)

type ApplicantData struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	ResumeText string `json:"resume_text"`
}

func (d ApplicantData) Validate() error {
	if d.FirstName == "" {
		return errors.New("не указано имя кандидата")
	}
	return nil
}

type ApplicantView struct {
	ID string `json:"id"`
	ApplicantData
}

func ApplicantConvert(rec dbmodels.Applicant) ApplicantView {
	return ApplicantView{
		ID: rec.ID,
		ApplicantData: ApplicantData{
			FirstName:  rec.FirstName,
			LastName:   rec.LastName,
			Email:      rec.Email,
			ResumeText: rec.ResumeText,
		},
	}
}
