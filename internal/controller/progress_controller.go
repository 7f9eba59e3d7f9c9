package controller

import (
	"errors"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/service"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// @Summary Get the user's leveling record for a language
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Param lang path string true "language"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "language not tracked"
// @Router /progress/{lang} [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.ProgressService.GetProgress(ctx.Request.Context(), claims.UserID, ctx.Param("lang"))
	if err != nil {
		if errors.Is(err, util.ErrLanguageNotTracked) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, progress)
}

// @Summary List leveling records across all of the user's tracked languages
// @Tags progress
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /progress [get]
func (c *ProgressController) ListProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	records, err := c.ProgressService.ListProgress(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, records)
}
