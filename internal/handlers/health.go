package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db  *gorm.DB
	env string
}

func NewHealthHandler(db *gorm.DB, env string) *HealthHandler {
	return &HealthHandler{db: db, env: env}
}

// Health reports liveness and whether the database answers a ping.
func (h *HealthHandler) Health(c *gin.Context) {
	database := "connected"
	if sqlDB, err := h.db.DB(); err != nil {
		database = "unavailable"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			database = "unavailable"
		}
	}

	code := http.StatusOK
	if database != "connected" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"success":     code == http.StatusOK,
		"message":     "Server is running",
		"environment": h.env,
		"database":    database,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
}
