package dbmodels

import "github.com/lib/pq"

type Vacancy struct {
	BaseModel
	Name        string `gorm:"type:varchar(255)" comment:"Название вакансии"`
	JobTitle    string `gorm:"type:varchar(255)" comment:"Должность"`
	Description string // описание вакансии, исходный текст для требований
	// фиксированные вопросы рекрутера, задаются дословно
	ExtraQuestions pq.StringArray `gorm:"type:text[]"`
}
