package controllers

import (
	"github.com/gin-gonic/gin"

	"stories-platform-api/models"
	"stories-platform-api/services"
)

func currentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(int); ok {
			return id, true
		}
	}
	return 0, false
}

func currentRole(c *gin.Context) (models.Role, bool) {
	if v, ok := c.Get("role"); ok {
		if role, ok := v.(models.Role); ok {
			return role, true
		}
	}
	return "", false
}

// currentActor builds the explicit actor passed into the workflow engine.
func currentActor(c *gin.Context) (services.Actor, bool) {
	id, okID := currentUserID(c)
	role, okRole := currentRole(c)
	if !okID || !okRole {
		return services.Actor{}, false
	}
	return services.Actor{ID: id, Role: role}, true
}
