package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"wayfarer/cmd/fx/configfx"
	"wayfarer/cmd/fx/exportfx"
	"wayfarer/cmd/fx/geofx"
	"wayfarer/cmd/fx/plannerfx"
	"wayfarer/cmd/fx/retrievalfx"
	"wayfarer/internal/api/controllers"
	"wayfarer/pkg/middleware"
	"wayfarer/pkg/utils"
)

func main() {
	app := fx.New(
		configfx.Module,
		geofx.Module,
		retrievalfx.Module,
		plannerfx.Module,
		exportfx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, cfg utils.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Printf("Starting HTTP server at :%s", cfg.Port)
				if err := engine.Run(":" + cfg.Port); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping HTTP server")
			return nil
		},
	})
}

func ProvideRouter(plannerController *controllers.PlannerController) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.CORSMiddleware())

	RegisterRoutes(r, plannerController)

	return r
}

func RegisterRoutes(r *gin.Engine, plannerController *controllers.PlannerController) {
	itineraries := r.Group("/itineraries")
	itineraries.POST("", plannerController.CreateItineraryHandler)
	itineraries.POST("/export", plannerController.ExportItineraryHandler)
}
