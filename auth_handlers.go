package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
)

type authRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// internalError logs the underlying cause and keeps the response body generic.
func internalError(c *gin.Context, funcName string, err error) {
	config.LogError(config.GetLogger(), "handlers", funcName, c.FullPath(), nil, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "something went wrong"})
}

func registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req authRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "email and password required"})
			return
		}

		user, err := models.Register(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case utils.IsValidationError(err):
				c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			case errors.Is(err, utils.ErrorDuplicateRecord):
				c.JSON(http.StatusConflict, gin.H{"message": "user already exists"})
			default:
				internalError(c, "registerHandler", err)
			}
			return
		}

		token, err := utils.JwtGenerate(user.ID)
		if err != nil {
			internalError(c, "registerHandler", err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"token": token,
			"user":  user,
		})
	}
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req authRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "email and password required"})
			return
		}

		user, err := models.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, utils.ErrorInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
				return
			}
			internalError(c, "loginHandler", err)
			return
		}

		token, err := utils.JwtGenerate(user.ID)
		if err != nil {
			internalError(c, "loginHandler", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  user,
		})
	}
}
