package api

import (
	"context"
	"net/http"
	"time"

	"gamestore/internal/service"
	"gamestore/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const idempotencyHeader = "Idempotency-Key"

// GameService is the game surface used by the handlers.
type GameService interface {
	CreateGame(ctx context.Context, req *service.GameCreateRequest, idempotencyKey string) (*service.GameFields, error)
	GetByKey(ctx context.Context, key string) (*service.GameModel, error)
	GetByID(ctx context.Context, id string) (*service.GameModel, error)
	ListGames(ctx context.Context) ([]service.GameModel, error)
	UpdateGame(ctx context.Context, req *service.GameUpdateRequest) (*service.GameUpdateRequest, error)
	DeleteGame(ctx context.Context, key string) (bool, error)
	DownloadGame(ctx context.Context, key string) (*service.GameDownload, error)
	PlatformsByGame(ctx context.Context, gameKey string) ([]service.PlatformRef, error)
	CountGames(ctx context.Context) (int, error)
}

type GenreService interface {
	CreateGenre(ctx context.Context, req *service.GenreRequest) (*service.GenreFields, error)
	DeleteGenre(ctx context.Context, id string) (*service.GenreFields, error)
	GetGenre(ctx context.Context, id string) (*service.GenreFields, error)
	ListGenres(ctx context.Context) ([]service.GenreFields, error)
	UpdateGenre(ctx context.Context, req *service.GenreRequest) (*service.GenreFields, error)
	GamesByGenre(ctx context.Context, genreID string) ([]service.GameName, error)
	GamesByParent(ctx context.Context, parentID string) ([]service.GameName, error)
}

type PlatformService interface {
	CreatePlatform(ctx context.Context, req *service.PlatformRequest) (*service.PlatformFields, error)
	DeletePlatform(ctx context.Context, id string) (*service.PlatformFields, error)
	GetPlatform(ctx context.Context, id string) (*service.PlatformFields, error)
	ListPlatforms(ctx context.Context) ([]service.PlatformFields, error)
	UpdatePlatform(ctx context.Context, req *service.PlatformRequest) (*service.PlatformFields, error)
	GamesByPlatform(ctx context.Context, platformID string) ([]service.GameName, error)
}

type PublisherService interface {
	CreatePublisher(ctx context.Context, req *service.PublisherRequest) (*service.PublisherFields, error)
	DeletePublisher(ctx context.Context, id string) (bool, error)
	ListPublishers(ctx context.Context) ([]service.PublisherFields, error)
	GetByCompanyName(ctx context.Context, companyName string) (*service.PublisherFields, error)
	UpdatePublisher(ctx context.Context, req *service.PublisherRequest) (*service.PublisherFields, error)
	GamesByCompanyName(ctx context.Context, companyName string) ([]service.GameName, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, req *service.OrderCreateRequest, idempotencyKey string) (*service.OrderCreateResponse, error)
	PaidOrders(ctx context.Context) ([]service.OrderResult, error)
	OrderDetails(ctx context.Context, id string) ([]service.OrderDetailModel, error)
	GetOrder(ctx context.Context, id string) (*service.OrderModel, error)
	BasketOrders(ctx context.Context) ([]service.BasketOrder, error)
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles HTTP requests
type Handler struct {
	games      GameService
	genres     GenreService
	platforms  PlatformService
	publishers PublisherService
	orders     OrderService
	db         Pinger
	logger     *zap.Logger
}

// Services groups the dependencies of the handler.
type Services struct {
	Games      GameService
	Genres     GenreService
	Platforms  PlatformService
	Publishers PublisherService
	Orders     OrderService
	DB         Pinger
}

// NewHandler creates a new handler
func NewHandler(s Services) *Handler {
	return &Handler{
		games:      s.Games,
		genres:     s.Genres,
		platforms:  s.Platforms,
		publishers: s.Publishers,
		orders:     s.Orders,
		db:         s.DB,
		logger:     util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(requestLogger(h.logger))
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/games", h.listGames)
	router.GET("/games/count", h.countGames)
	router.GET("/games/:key", h.getGameByKey)
	router.GET("/games/:key/download", h.downloadGame)
	router.POST("/games/new", h.createGame)
	router.PUT("/game/update", h.updateGame)
	router.DELETE("/game/remove/:key", h.deleteGame)
	router.GET("/search/game/:id", h.getGameByID)
	router.GET("/platforms/game/:id", h.platformsByGame)

	router.GET("/genres", h.listGenres)
	router.GET("/genre/:id", h.getGenre)
	router.POST("/genres/new", h.createGenre)
	router.PUT("/genre/update", h.updateGenre)
	router.DELETE("/genre/remove/:id", h.deleteGenre)
	router.GET("/games/genre/:id", h.gamesByGenre)
	router.GET("/games/parent/:id", h.gamesByParent)

	router.GET("/platforms", h.listPlatforms)
	router.GET("/platform/:id", h.getPlatform)
	router.POST("/platforms/new", h.createPlatform)
	router.PUT("/platform/update", h.updatePlatform)
	router.DELETE("/platform/remove/:id", h.deletePlatform)
	router.GET("/games/platform/:id", h.gamesByPlatform)

	router.GET("/publishers", h.listPublishers)
	router.GET("/publisher/:companyname", h.getPublisher)
	router.POST("/publisher/new", h.createPublisher)
	router.PUT("/publisher/update", h.updatePublisher)
	router.DELETE("/publisher/remove/:id", h.deletePublisher)
	router.GET("/games/publisher/:companyname", h.gamesByCompanyName)

	router.GET("/orders", h.paidOrders)
	router.POST("/orders/new", h.createOrder)
	router.GET("/orders/:id", h.orderDetails)
	router.GET("/order/:id", h.getOrder)
	router.GET("/cart", h.basket)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}

// readinessCheck reports ready only when the database answers.
func (h *Handler) readinessCheck(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			util.LoggerFrom(c.Request.Context()).Warn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  "database unavailable",
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
