package middleware

import (
	"net/http"
	"strings"

	"threadit/internal/models"
	"threadit/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"

// LoadUser resolves an optional bearer token into the acting user and sets
// it on the context. Missing, invalid, or expired tokens pass through
// anonymously; rejecting is left to AuthRequired on protected routes.
func LoadUser(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		userID, err := utils.ParseToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		// Token subject must still resolve to a stored user.
		var user models.User
		if result := database.First(&user, userID); result.Error == nil {
			c.Set(CheckUserKey, &user)
		}
		c.Next()
	}
}

// AuthRequired ensures a user was resolved by LoadUser.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Unauthorized",
			})
			return
		}
		c.Next()
	}
}
