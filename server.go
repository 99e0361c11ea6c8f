package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/middlewares"
	"github.com/mmdatafocus/inventory_backend/models"
)

const defaultPort = "8080"

func homeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Inventory API is running", "version": "1.0"})
	}
}

func newRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", homeHandler())
	r.Static("/uploads", "./"+uploadRoot())

	api := r.Group("/api")
	{
		api.POST("/auth/register", registerHandler())
		api.POST("/auth/login", loginHandler())

		protected := api.Group("", middlewares.AuthMiddleware())
		{
			protected.GET("/products", listProductsHandler())
			protected.POST("/products/create", createProductHandler())
			protected.GET("/products/:id", getProductHandler())
			protected.POST("/products/:id/receive", receiveItemHandler())
			protected.POST("/items/dispatch", dispatchItemHandler())
			protected.GET("/dashboard/alerts", alertsHandler())
			protected.GET("/dashboard/stats", statsHandler())
			protected.GET("/reports/inventory", exportInventoryHandler())
		}
	}

	return r
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: newRouter(),
	}

	// Start listening first, then connect backends with retry; DB/redis
	// being slow must not keep the port closed.
	go func() {
		log.Printf("http server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()
	config.ConnectRedisWithRetry()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown error: %v", err)
	}
	log.Println("http server stopped")
}
