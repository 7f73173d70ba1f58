package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"hr-interview-backend/controllers"
	"hr-interview-backend/lib/analysis"
	interviewhandler "hr-interview-backend/lib/interview"
	authutils "hr-interview-backend/lib/utils/auth-utils"
	apimodels "hr-interview-backend/models/api"
	interviewapimodels "hr-interview-backend/models/api/interview"
)

type interviewApiController struct {
	controllers.BaseAPIController
}

func InitInterviewApiRouters(app *fiber.App) {
	controller := interviewApiController{}
	app.Route("interview", func(router fiber.Router) {
		router.Post("", controller.create)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("coverage", controller.coverage)
			idRoute.Post("analyze", controller.analyze)
			idRoute.Get("assessment", controller.assessment)
		})
	})
}

// @Summary Создание
// @Tags Интервью
// @Description Создание интервью, в ответе токен публичной ссылки кандидата
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 interviewapimodels.CreateInterviewRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=interviewapimodels.CreateInterviewResponse}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/interview [post]
func (c *interviewApiController) create(ctx *fiber.Ctx) error {
	var payload interviewapimodels.CreateInterviewRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	rec, err := interviewhandler.Instance.Create(ctx.Context(), payload.VacancyID, payload.ApplicantID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания интервью")
	}
	token, err := authutils.GetInterviewToken(rec.ID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выдачи токена интервью")
	}
	resp := interviewapimodels.CreateInterviewResponse{
		InterviewID: rec.ID,
		Token:       token,
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Покрытие требований
// @Tags Интервью
// @Description Текущая матрица покрытия требований по интервью
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  true         "rec ID"
// @Success 200 {object} apimodels.Response{data=requirementapimodels.CoverageMatrix}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/interview/{id}/coverage [get]
func (c *interviewApiController) coverage(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	rec, err := interviewhandler.Instance.Get(id)
	if err != nil {
		if errors.Is(err, interviewhandler.ErrInterviewNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError(err.Error()))
		}
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения интервью")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(rec.Coverage))
}

// @Summary Анализ
// @Tags Интервью
// @Description Запуск анализа завершённого интервью
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  true         "rec ID"
// @Success 200 {object} apimodels.Response{data=analysisapimodels.AssessmentResult}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/interview/{id}/analyze [post]
func (c *interviewApiController) analyze(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := analysis.Instance.Analyze(ctx.Context(), id)
	if err != nil {
		if errors.Is(err, analysis.ErrInterviewNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError(err.Error()))
		}
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка анализа интервью")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Отчёт
// @Tags Интервью
// @Description Итоговый отчёт по интервью
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  true         "rec ID"
// @Success 200 {object} apimodels.Response{data=analysisapimodels.AssessmentResult}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/interview/{id}/assessment [get]
func (c *interviewApiController) assessment(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := analysis.Instance.GetAssessment(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения отчёта")
	}
	if result == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError("отчёт не найден"))
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
