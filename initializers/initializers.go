package initializers

import (
	"context"

	"hr-interview-backend/config"
	"hr-interview-backend/fiberlog"
	aiclient "hr-interview-backend/lib/ai-client"
	"hr-interview-backend/lib/analysis"
	analyzeworker "hr-interview-backend/lib/analysis/analyze-worker"
	applicanthandler "hr-interview-backend/lib/applicant"
	interviewhandler "hr-interview-backend/lib/interview"
	"hr-interview-backend/lib/requirements"
	vacancyhandler "hr-interview-backend/lib/vacancy"
)

var LoggerConfig *fiberlog.Config

func InitAllServices(ctx context.Context) {
	LoggerConfig = InitLogger()
	config.InitConfig()
	InitDBConnection()
	aiclient.NewHandler(ctx)
	requirements.NewHandler()
	vacancyhandler.NewHandler()
	applicanthandler.NewHandler()
	interviewhandler.NewHandler()
	analysis.NewHandler()
	go initWorkers(ctx)
}

func initWorkers(ctx context.Context) {
	// Задача анализа завершённых интервью
	analyzeworker.StartWorker(ctx)
}
