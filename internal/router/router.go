package router

import (
	"net/http"

	"threadit/internal/handlers"
	"threadit/internal/middleware"
	"threadit/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.Engine, database *gorm.DB, cache *utils.Cache) {
	// Handlers
	authHandler := handlers.NewAuthHandler(database)
	subredditHandler := handlers.NewSubredditHandler(database, cache)
	postHandler := handlers.NewPostHandler(database, cache)
	voteHandler := handlers.NewVoteHandler(database, cache)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Welcome to the threadit server!"})
	})

	// Public Routes
	r.POST("/users/register", authHandler.Register)
	r.POST("/users/login", authHandler.Login) // short-circuits if already authenticated
	r.GET("/subreddits", subredditHandler.List)
	r.GET("/posts", postHandler.List)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/users/token", authHandler.Token)

		authorized.POST("/subreddits", subredditHandler.Create)
		authorized.DELETE("/subreddits/:subredditId", subredditHandler.Delete)

		authorized.POST("/posts", postHandler.Create)
		authorized.PUT("/posts/:postId", postHandler.Update)
		authorized.DELETE("/posts/:postId", postHandler.Delete)

		authorized.POST("/votes/upvotes/:postId", voteHandler.Upvote)
		authorized.POST("/votes/downvotes/:postId", voteHandler.Downvote)
		authorized.DELETE("/votes/upvotes/:postId", voteHandler.RemoveUpvote)
		authorized.DELETE("/votes/downvotes/:postId", voteHandler.RemoveDownvote)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No route found."})
	})
}
