package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/models"
)

func alertsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		alerts, err := models.GetLowStockAlerts(c.Request.Context())
		if err != nil {
			internalError(c, "alertsHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"alerts": alerts})
	}
}

func statsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := models.GetDashboardStats(c.Request.Context())
		if err != nil {
			internalError(c, "statsHandler", err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
