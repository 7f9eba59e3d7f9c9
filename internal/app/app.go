package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/config"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/controller"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/repository"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/service"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/configwatcher"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/database"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/logger"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/monitoring"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/security"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	progress *repository.LanguageProgressRepository
	quiz     *repository.QuizRepository
	chat     *repository.ChatRepository
	scoreTx  *repository.ScoreTxRunner
}

type services struct {
	auth     *service.AuthService
	user     *service.UserService
	storage  service.StorageProvider
	ai       *service.AIService
	progress *service.ProgressService
	quiz     *service.QuizService
	chat     *service.ChatService
}

type controllers struct {
	auth     *controller.AuthController
	user     *controller.UserController
	progress *controller.ProgressController
	quiz     *controller.QuizController
	chat     *controller.ChatController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		progress: repository.NewLanguageProgressRepository(db),
		quiz:     repository.NewQuizRepository(db),
		chat:     repository.NewChatRepository(db),
		scoreTx:  repository.NewScoreTxRunner(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	storage, err := service.NewStorageProvider(&cfg.Storage)
	if err != nil {
		logger.Log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	s.storage = storage

	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.ai = service.NewAIService(cfg.AI)
	s.progress = service.NewProgressService(repos.progress, cfg.Quiz, rdb)
	s.quiz = service.NewQuizService(
		repos.quiz,
		repos.progress,
		s.progress,
		repos.scoreTx,
		service.NewOpenAIQuizGenerator(cfg.AI, cfg.Quiz),
		cfg.Quiz,
	)
	s.chat = service.NewChatService(repos.chat, s.ai, s.progress)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		user:     controller.NewUserController(s.user, s.storage),
		progress: controller.NewProgressController(s.progress),
		quiz:     controller.NewQuizController(s.quiz),
		chat:     controller.NewChatController(s.chat),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, progress caching disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("sora-language-tutor", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	go configwatcher.WatchConfig("configs/config.yaml", cfg, func(newCfg interface{}) {
		reloaded, ok := newCfg.(*config.Config)
		if !ok {
			return
		}
		app.Config = reloaded
		for _, cb := range app.configCallbacks {
			cb(reloaded)
		}
		logger.Log.Info("Configuration reloaded")
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
