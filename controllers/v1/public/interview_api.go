package publicapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"hr-interview-backend/controllers"
	interviewhandler "hr-interview-backend/lib/interview"
	authutils "hr-interview-backend/lib/utils/auth-utils"
	apimodels "hr-interview-backend/models/api"
	interviewapimodels "hr-interview-backend/models/api/interview"
)

type publicInterviewApiController struct {
	controllers.BaseAPIController
}

func InitPublicInterviewApiRouters(app *fiber.App) {
	controller := publicInterviewApiController{}
	app.Route("interview", func(router fiber.Router) {
		router.Post("question", controller.question)
		router.Post("next_turn", controller.nextTurn)
	})
}

// @Summary Текущий вопрос
// @Tags Публичное интервью
// @Description Текущий вопрос без сохранения ответа, для переподключения
// @Param	body body	 interviewapimodels.NextTurnRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=interviewapimodels.TurnResult}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/interview/question [post]
func (c *publicInterviewApiController) question(ctx *fiber.Ctx) error {
	var payload interviewapimodels.NextTurnRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	interviewID, err := authutils.ValidateInterviewToken(payload.Token)
	if err != nil {
		return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("токен недействителен"))
	}
	result, err := interviewhandler.Instance.NextQuestion(ctx.Context(), interviewID, payload.Signals)
	if err != nil {
		if errors.Is(err, interviewhandler.ErrInterviewNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError(err.Error()))
		}
		logger := log.WithField("interview_id", interviewID)
		return c.SendError(ctx, logger, err, "Ошибка получения вопроса")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Ход интервью
// @Tags Публичное интервью
// @Description Сохранение ответа кандидата и выдача следующего вопроса
// @Param	body body	 interviewapimodels.NextTurnRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=interviewapimodels.TurnResult}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/public/interview/next_turn [post]
func (c *publicInterviewApiController) nextTurn(ctx *fiber.Ctx) error {
	var payload interviewapimodels.NextTurnRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	interviewID, err := authutils.ValidateInterviewToken(payload.Token)
	if err != nil {
		return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("токен недействителен"))
	}
	result, err := interviewhandler.Instance.NextTurn(ctx.Context(), interviewID, payload.Text, payload.Signals)
	if err != nil {
		if errors.Is(err, interviewhandler.ErrInterviewNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError(err.Error()))
		}
		logger := log.WithField("interview_id", interviewID)
		return c.SendError(ctx, logger, err, "Ошибка обработки ответа")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
