// @title		Address API
// @version		1.0
// @description	Standardizes postal addresses and infers city and state from postal codes.
// @BasePath	/
package main

import (
	"context"
	"net/http"

	"address-api/docs"
	"address-api/internal/config"
	"address-api/internal/handler"
	"address-api/internal/lookup"
	"address-api/internal/metrics"
	"address-api/internal/middleware"
	"address-api/internal/repository"
	"address-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	config.SetupLogger(cfg)

	if err := repository.RunMigrations(cfg.DBSource); err != nil {
		log.Fatal().Err(err).Msg("cannot run migrations")
	}

	// Database connection
	conn, err := pgxpool.New(context.Background(), cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	// Initialize layers
	repo := repository.NewRepository(conn)

	resolver := lookup.NewResolver(lookup.Config{
		PostcodesBaseURL: cfg.PostcodesBaseURL,
		ZiptasticBaseURL: cfg.ZiptasticBaseURL,
		ZiptasticAPIKey:  cfg.ZiptasticAPIKey,
	}, &http.Client{Timeout: cfg.LookupTimeout}, metrics.NewLookupMetrics("address_api", prometheus.DefaultRegisterer))

	addressService := service.NewAddressService(repo, resolver)

	addressHandler := handler.NewAddressHandler(addressService)
	postalLookupHandler := handler.NewPostalLookupHandler(addressService)

	docs.SwaggerInfo.BasePath = "/"

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/postal-lookup", postalLookupHandler.Lookup)

	r.POST("/addresses", addressHandler.Create)
	r.GET("/addresses", addressHandler.List)
	r.GET("/addresses/:id", addressHandler.Get)
	r.POST("/addresses/:id/refresh", addressHandler.Refresh)

	log.Info().Str("address", cfg.ServerAddress).Msg("starting server")
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
