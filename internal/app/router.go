package app

import (
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/docs"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/config"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/middleware"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)

		authGroup.GET("/users", middleware.AdminMiddleware(), c.user.GetUsers)

		chats := authGroup.Group("/chats")
		{
			chats.GET("", c.chat.GetChats)
			chats.POST("/create", c.chat.CreateChat)
			chats.DELETE("", c.chat.ClearHistory)
			chats.GET("/:chatId", c.chat.GetChat)
			chats.PATCH("/:chatId", c.chat.ContinueChat)
			chats.DELETE("/:chatId", c.chat.DeleteChat)
			chats.GET("/:chatId/messages", c.chat.GetMessages)
		}

		quizzes := authGroup.Group("/quizzes")
		{
			quizzes.POST("/create", c.quiz.CreateQuiz)
			quizzes.PATCH("/:quizId/answer", c.quiz.AnswerQuiz)
			quizzes.GET("/:lang", c.quiz.GetQuizzes)
		}

		progress := authGroup.Group("/progress")
		{
			progress.GET("", c.progress.ListProgress)
			progress.GET("/:lang", c.progress.GetProgress)
		}
	}
}
