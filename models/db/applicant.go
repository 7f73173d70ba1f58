package dbmodels

type Applicant struct {
	BaseModel
	FirstName  string `gorm:"type:varchar(255)"`
	LastName   string `gorm:"type:varchar(255)"`
	Email      string `gorm:"type:varchar(255)"`
	ResumeText string // извлечённый текст резюме
}
