package controller

import (
	"errors"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/service"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

type CreateQuizRequest struct {
	Language string      `json:"language" binding:"required"`
	Type     model.Skill `json:"type" binding:"required"`
}

// @Summary Create a quiz for the user's current level in a language
// @Tags quizzes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateQuizRequest true "quiz target"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response "language not tracked"
// @Failure 502 {object} util.Response "quiz generation failed"
// @Router /quizzes/create [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !req.Type.Valid() {
		util.BadRequest(ctx, "type must be vocab or grammar")
		return
	}

	quiz, err := c.QuizService.CreateQuiz(ctx.Request.Context(), claims.UserID, req.Language, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrLanguageNotTracked):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrQuizGeneration):
			util.Error(ctx, 502, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, quiz)
}

type AnswerQuizRequest struct {
	Answers []string `json:"answers" binding:"required"`
}

// @Summary Submit answers for a quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path string true "quiz ID"
// @Param body body AnswerQuizRequest true "ordered answers"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "quiz not found"
// @Failure 409 {object} util.Response "already answered"
// @Router /quizzes/{quizId}/answer [patch]
func (c *QuizController) AnswerQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizID := ctx.Param("quizId")

	var req AnswerQuizRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.AnswerQuiz(ctx.Request.Context(), claims.UserID, quizID, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuizNotFound):
			util.NotFound(ctx, err.Error())
		case errors.Is(err, util.ErrQuizAlreadyAnswered):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrAnswerCountMismatch):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrLanguageNotTracked):
			util.NotFound(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// @Summary List the user's quizzes for a language
// @Tags quizzes
// @Produce json
// @Security ApiKeyAuth
// @Param lang path string true "language"
// @Success 200 {object} util.Response
// @Router /quizzes/{lang} [get]
func (c *QuizController) GetQuizzes(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	quizzes, err := c.QuizService.ListQuizzes(claims.UserID, ctx.Param("lang"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, quizzes)
}
