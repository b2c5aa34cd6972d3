package handlers

import (
	"net/http"
	"time"

	"threadit/internal/models"
	"threadit/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const postListCacheKey = "post:list"

type PostHandler struct {
	db    *gorm.DB
	cache *utils.Cache
}

func NewPostHandler(db *gorm.DB, cache *utils.Cache) *PostHandler {
	return &PostHandler{db: db, cache: cache}
}

// List returns every post with author, subreddit, votes, and direct
// children. Public. The flat payload is cached briefly and invalidated by
// every post or vote mutation.
func (h *PostHandler) List(c *gin.Context) {
	if cached := h.cache.Get(postListCacheKey); cached != nil {
		if posts, ok := cached.([]models.Post); ok {
			OK(c, gin.H{"posts": posts})
			return
		}
	}

	var posts []models.Post
	err := h.db.Preload("User").Preload("Subreddit").
		Preload("Upvotes").Preload("Downvotes").
		Preload("Children").
		Order("id ASC").
		Find(&posts).Error
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not list posts.")
		return
	}

	h.cache.Set(postListCacheKey, posts, 30*time.Second)
	OK(c, gin.H{"posts": posts})
}

type createPostRequest struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	SubredditID uint   `json:"subredditId"`
	ParentID    *uint  `json:"parentId"`
}

// Create persists a post owned by the acting user, optionally nested
// under a parent post.
func (h *PostHandler) Create(c *gin.Context) {
	user := CurrentUser(c)

	var req createPostRequest
	if err := bindStrict(c, &req, "title", "text", "subredditId", "parentId"); err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Text == "" || req.SubredditID == 0 {
		Fail(c, http.StatusBadRequest, "Invalid request data. Required request keys are missing.")
		return
	}

	// Referenced rows must exist before we insert against their keys.
	var subreddit models.Subreddit
	if err := h.db.First(&subreddit, req.SubredditID).Error; err != nil {
		Fail(c, http.StatusNotFound, "Resource subreddit not found.")
		return
	}
	if req.ParentID != nil {
		var parent models.Post
		if err := h.db.First(&parent, *req.ParentID).Error; err != nil {
			Fail(c, http.StatusNotFound, "Resource parent post not found.")
			return
		}
	}

	post := models.Post{
		Title:       req.Title,
		Text:        req.Text,
		UserID:      user.ID,
		SubredditID: req.SubredditID,
		ParentID:    req.ParentID,
	}
	if err := h.db.Create(&post).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not create new post.")
		return
	}

	h.cache.Delete(postListCacheKey)
	OK(c, gin.H{"post": post})
}

type updatePostRequest struct {
	// Pointers so an absent key is distinguishable from an empty value.
	Title *string `json:"title"`
	Text  *string `json:"text"`
}

// Update edits title and/or text. Owner only; absent fields are unchanged.
func (h *PostHandler) Update(c *gin.Context) {
	user := CurrentUser(c)

	var req updatePostRequest
	if err := bindStrict(c, &req, "title", "text"); err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var post models.Post
	if err := h.db.First(&post, utils.StringToUint(c.Param("postId"))).Error; err != nil {
		Fail(c, http.StatusNotFound, "Resource not found.")
		return
	}
	if post.UserID != user.ID {
		Fail(c, http.StatusForbidden, "Permission denied.")
		return
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Text != nil {
		post.Text = *req.Text
	}
	if err := h.db.Save(&post).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not update post.")
		return
	}

	h.cache.Delete(postListCacheKey)
	OK(c, gin.H{"post": post})
}

// Delete removes a post. Owner only. The reply subtree and all votes on
// it go with the post, in one transaction.
func (h *PostHandler) Delete(c *gin.Context) {
	user := CurrentUser(c)

	var post models.Post
	if err := h.db.First(&post, utils.StringToUint(c.Param("postId"))).Error; err != nil {
		Fail(c, http.StatusNotFound, "Resource not found.")
		return
	}
	if post.UserID != user.ID {
		Fail(c, http.StatusForbidden, "Permission denied.")
		return
	}

	tx := h.db.Begin()
	if err := deletePostTree(tx, post.ID); err != nil {
		tx.Rollback()
		Fail(c, http.StatusInternalServerError, "Could not delete post.")
		return
	}
	if err := tx.Commit().Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not delete post.")
		return
	}

	h.cache.Delete(postListCacheKey)
	OK(c, gin.H{"post": post})
}

// deletePostTree removes a post, its votes, and its reply subtree,
// children first.
func deletePostTree(tx *gorm.DB, postID uint) error {
	var childIDs []uint
	if err := tx.Model(&models.Post{}).Where("parent_id = ?", postID).Pluck("id", &childIDs).Error; err != nil {
		return err
	}
	for _, childID := range childIDs {
		if err := deletePostTree(tx, childID); err != nil {
			return err
		}
	}
	if err := tx.Where("post_id = ?", postID).Delete(&models.Upvote{}).Error; err != nil {
		return err
	}
	if err := tx.Where("post_id = ?", postID).Delete(&models.Downvote{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.Post{}, postID).Error
}
