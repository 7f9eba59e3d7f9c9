package controller

import (
	"errors"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/service"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	ChatService *service.ChatService
}

func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

type ChatMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// @Summary Start a new tutor chat from an opening message
// @Tags chats
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body ChatMessageRequest true "opening message"
// @Success 201 {object} util.Response
// @Router /chats/create [post]
func (c *ChatController) CreateChat(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ChatMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	chat, err := c.ChatService.CreateChat(ctx.Request.Context(), claims.UserID, req.Message)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, chat)
}

// @Summary Send a message in an existing chat
// @Tags chats
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param chatId path string true "chat ID"
// @Param body body ChatMessageRequest true "message"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "chat not found"
// @Router /chats/{chatId} [patch]
func (c *ChatController) ContinueChat(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ChatMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	chat, err := c.ChatService.ContinueChat(ctx.Request.Context(), claims.UserID, ctx.Param("chatId"), req.Message)
	if err != nil {
		if errors.Is(err, util.ErrChatNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, chat)
}

// @Summary List the user's recent chats
// @Tags chats
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /chats [get]
func (c *ChatController) GetChats(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	chats, err := c.ChatService.GetChats(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, chats)
}

// @Summary Get a single chat
// @Tags chats
// @Produce json
// @Security ApiKeyAuth
// @Param chatId path string true "chat ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "chat not found"
// @Router /chats/{chatId} [get]
func (c *ChatController) GetChat(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	chat, err := c.ChatService.GetChat(claims.UserID, ctx.Param("chatId"))
	if err != nil {
		if errors.Is(err, util.ErrChatNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, chat)
}

// @Summary Get the messages of a chat
// @Tags chats
// @Produce json
// @Security ApiKeyAuth
// @Param chatId path string true "chat ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "chat not found"
// @Router /chats/{chatId}/messages [get]
func (c *ChatController) GetMessages(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	messages, err := c.ChatService.GetMessages(claims.UserID, ctx.Param("chatId"))
	if err != nil {
		if errors.Is(err, util.ErrChatNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, messages)
}

// @Summary Delete a chat
// @Tags chats
// @Produce json
// @Security ApiKeyAuth
// @Param chatId path string true "chat ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "chat not found"
// @Router /chats/{chatId} [delete]
func (c *ChatController) DeleteChat(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ChatService.DeleteChat(claims.UserID, ctx.Param("chatId")); err != nil {
		if errors.Is(err, util.ErrChatNotFound) {
			util.NotFound(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}

// @Summary Delete all of the user's chats
// @Tags chats
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /chats [delete]
func (c *ChatController) ClearHistory(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.ChatService.ClearHistory(claims.UserID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, nil)
}
