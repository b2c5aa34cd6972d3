package handlers

import (
	"errors"
	"net/http"
	"time"

	"threadit/internal/models"
	"threadit/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const subredditListCacheKey = "subreddit:list"

type SubredditHandler struct {
	db    *gorm.DB
	cache *utils.Cache
}

func NewSubredditHandler(db *gorm.DB, cache *utils.Cache) *SubredditHandler {
	return &SubredditHandler{db: db, cache: cache}
}

// List returns all subreddits. Public.
func (h *SubredditHandler) List(c *gin.Context) {
	if cached := h.cache.Get(subredditListCacheKey); cached != nil {
		if subreddits, ok := cached.([]models.Subreddit); ok {
			OK(c, gin.H{"subreddits": subreddits})
			return
		}
	}

	var subreddits []models.Subreddit
	if err := h.db.Order("id ASC").Find(&subreddits).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not list subreddits.")
		return
	}

	h.cache.Set(subredditListCacheKey, subreddits, time.Minute)
	OK(c, gin.H{"subreddits": subreddits})
}

// Create persists a subreddit owned by the acting user.
func (h *SubredditHandler) Create(c *gin.Context) {
	user := CurrentUser(c)

	var req struct {
		Name string `json:"name"`
	}
	if err := bindStrict(c, &req, "name"); err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		Fail(c, http.StatusBadRequest, "Invalid request data. Required request keys are missing.")
		return
	}

	subreddit := models.Subreddit{
		Name:   req.Name,
		UserID: user.ID,
	}
	if err := h.db.Create(&subreddit).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Fail(c, http.StatusConflict, "Subreddit name already exists")
			return
		}
		Fail(c, http.StatusInternalServerError, "Could not create new subreddit.")
		return
	}

	h.cache.Delete(subredditListCacheKey)
	OK(c, gin.H{"subreddit": subreddit})
}

// Delete removes a subreddit. Owner only, and the request must be bodyless.
func (h *SubredditHandler) Delete(c *gin.Context) {
	if !requireEmptyBody(c) {
		Fail(c, http.StatusBadRequest, "Invalid request. Delete request contains a body.")
		return
	}
	user := CurrentUser(c)

	var subreddit models.Subreddit
	if err := h.db.First(&subreddit, utils.StringToUint(c.Param("subredditId"))).Error; err != nil {
		Fail(c, http.StatusNotFound, "Resource not found.")
		return
	}
	if subreddit.UserID != user.ID {
		Fail(c, http.StatusForbidden, "Permission denied.")
		return
	}

	// Posts under the subreddit, and votes on them, go with it.
	tx := h.db.Begin()
	var postIDs []uint
	if err := tx.Model(&models.Post{}).Where("subreddit_id = ?", subreddit.ID).Pluck("id", &postIDs).Error; err != nil {
		tx.Rollback()
		Fail(c, http.StatusInternalServerError, "Could not delete subreddit.")
		return
	}
	if len(postIDs) > 0 {
		if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Upvote{}).Error; err != nil {
			tx.Rollback()
			Fail(c, http.StatusInternalServerError, "Could not delete subreddit.")
			return
		}
		if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Downvote{}).Error; err != nil {
			tx.Rollback()
			Fail(c, http.StatusInternalServerError, "Could not delete subreddit.")
			return
		}
		if err := tx.Where("subreddit_id = ?", subreddit.ID).Delete(&models.Post{}).Error; err != nil {
			tx.Rollback()
			Fail(c, http.StatusInternalServerError, "Could not delete subreddit.")
			return
		}
	}
	if err := tx.Delete(&subreddit).Error; err != nil {
		tx.Rollback()
		Fail(c, http.StatusInternalServerError, "Could not delete subreddit.")
		return
	}
	if err := tx.Commit().Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not delete subreddit.")
		return
	}

	h.cache.Delete(subredditListCacheKey)
	h.cache.Delete(postListCacheKey)
	OK(c, gin.H{"subreddit": subreddit})
}
