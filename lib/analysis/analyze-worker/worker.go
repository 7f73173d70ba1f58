package analyzeworker

import (
	"context"
	"time"

	"hr-interview-backend/config"
	"hr-interview-backend/db"
	"hr-interview-backend/lib/analysis"
	sessionstore "hr-interview-backend/lib/interview/session-store"
	baseworker "hr-interview-backend/lib/utils/base-worker"
	"hr-interview-backend/lib/utils/helpers"
	dbmodels "hr-interview-backend/models/db"
)

func StartWorker(ctx context.Context) {
	cfg := config.Conf.Worker
	if cfg.AnalyzeEnabled != nil && !*cfg.AnalyzeEnabled {
		return
	}
	i := &impl{
		BaseImpl: *baseworker.NewInstance("AnalyzeWorker",
			time.Duration(cfg.AnalyzeFirstRunSec)*time.Second,
			time.Duration(cfg.AnalyzePeriodSec)*time.Second),
		sessionStore: sessionstore.NewInstance(db.DB),
		analyzer:     analysis.Instance,
	}
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	sessionStore sessionstore.Provider
	analyzer     analysis.Provider
}

func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	list, err := i.sessionStore.ListByStatus(dbmodels.InterviewFinished)
	if err != nil {
		logger.WithError(err).Error("Ошибка получения списка интервью для анализа")
		return
	}
	for _, rec := range list {
		if helpers.IsContextDone(ctx) {
			break
		}
		if _, err := i.analyzer.Analyze(ctx, rec.ID); err != nil {
			logger.
				WithError(err).
				WithField("interview_id", rec.ID).
				Error("Ошибка анализа интервью")
			continue
		}
	}
}
