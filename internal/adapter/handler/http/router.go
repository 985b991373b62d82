package http

import (
	"net/http"

	"github.com/sm8ta/webike_maintenance_microservice/internal/config"
	"github.com/sm8ta/webike_maintenance_microservice/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	router *gin.Engine
}

func NewRouter(
	cfg *config.HTTP,
	tokenService ports.TokenService,
	metrics ports.MetricsPort,
	recordHandler *RecordHandler,
	tagHandler *TagHandler,
	checkHandler *CheckHandler,
	odoHandler *OdoHandler,
) (*Router, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.MaxMultipartMemory = maxPhotoSize

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := AuthMiddleware(tokenService)

	api := router.Group("/api")
	api.Use(auth)
	{
		api.POST("/odo-detect", odoHandler.Detect)
	}

	records := router.Group("/records")
	records.Use(auth)
	{
		records.GET("", recordHandler.ListRecords)
		records.POST("", recordHandler.CreateRecord)
		records.GET("/:id", recordHandler.GetRecord)
		records.PUT("/:id", recordHandler.UpdateRecord)
		records.DELETE("/:id", recordHandler.DeleteRecord)
	}

	tags := router.Group("/tags")
	tags.Use(auth)
	{
		tags.GET("", tagHandler.ListTags)
		tags.POST("", tagHandler.CreateTag)
		tags.POST("/defaults", tagHandler.SeedDefaults)
		tags.PUT("/:id", tagHandler.UpdateTag)
		tags.DELETE("/:id", tagHandler.DeleteTag)
	}

	checks := router.Group("/checks")
	checks.Use(auth)
	{
		checks.POST("", checkHandler.Check)
		checks.GET("", checkHandler.History)
		checks.GET("/latest", checkHandler.Latest)
		checks.DELETE("", checkHandler.ClearHistory)
	}

	router.GET("/dashboard", auth, checkHandler.Dashboard)

	return &Router{router: router}, nil
}

func (r *Router) Serve(addr string) error {
	return r.router.Run(addr)
}

func (r *Router) Engine() *gin.Engine {
	return r.router
}
