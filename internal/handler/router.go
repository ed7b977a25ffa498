package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"feedbackinsights/internal/repository"
	"feedbackinsights/internal/service"
)

// Deps is everything the HTTP surface needs. Nil optional parts disable
// their routes.
type Deps struct {
	Repo       repository.Repository
	DB         Pinger
	Catalog    *service.CatalogService
	Feedback   *service.FeedbackService
	Summary    *service.SummaryService
	Stats      *service.DailyStatsService
	Settings   *service.SystemSettingsService
	Vocabulary VocabularyInvalidator
	// LiveFeed serves GET /ws/feedbacks when set.
	LiveFeed http.Handler
	Swagger  bool
	Logger   *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(d.Logger))
	engine.Use(CORS())

	(&HealthHandler{DB: d.DB}).Register(engine)
	RegisterDocs(engine)

	api := engine.Group("/api/v1")
	(&PurchaseHandler{Repo: d.Repo, Catalog: d.Catalog, Logger: d.Logger}).Register(api)
	(&LabelHandler{Repo: d.Repo, Catalog: d.Catalog, Vocabulary: d.Vocabulary, Logger: d.Logger}).Register(api)
	(&FeedbackHandler{Repo: d.Repo, Feedback: d.Feedback, Summary: d.Summary, Logger: d.Logger}).Register(api)
	(&StatsHandler{Stats: d.Stats, Logger: d.Logger}).Register(api)
	(&SettingsHandler{Settings: d.Settings, Logger: d.Logger}).Register(api)

	if d.LiveFeed != nil {
		engine.GET("/ws/feedbacks", gin.WrapH(d.LiveFeed))
	}
	if d.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return engine
}
