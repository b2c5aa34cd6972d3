package handlers

import (
	"errors"
	"net/http"

	"threadit/internal/models"
	"threadit/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// VoteHandler drives the per-(user, post) vote state machine: NONE, UP,
// DOWN. A user holds at most one of {upvote, downvote} per post; casting
// the opposite direction replaces the existing vote atomically, and a
// same-direction repeat is rejected.
type VoteHandler struct {
	db    *gorm.DB
	cache *utils.Cache
}

func NewVoteHandler(db *gorm.DB, cache *utils.Cache) *VoteHandler {
	return &VoteHandler{db: db, cache: cache}
}

// targetPost resolves the :postId path parameter to an existing post id.
// Writes the 404 response itself when the post is missing.
func (h *VoteHandler) targetPost(c *gin.Context) (uint, bool) {
	var post models.Post
	if err := h.db.First(&post, utils.StringToUint(c.Param("postId"))).Error; err != nil {
		Fail(c, http.StatusNotFound, "Resource post not found.")
		return 0, false
	}
	return post.ID, true
}

// Upvote moves the pair to UP. Rejected if already UP; replaces DOWN.
func (h *VoteHandler) Upvote(c *gin.Context) {
	if !requireEmptyBody(c) {
		Fail(c, http.StatusBadRequest, "Invalid request. Request contains a body.")
		return
	}
	user := CurrentUser(c)
	postID, ok := h.targetPost(c)
	if !ok {
		return
	}

	var existing models.Upvote
	if err := h.db.Where("user_id = ? AND post_id = ?", user.ID, postID).First(&existing).Error; err == nil {
		Fail(c, http.StatusForbidden, "User already upvoted specified post.")
		return
	}

	// Clearing the opposite row and inserting the new one is a single
	// transaction: a failure between the two must not leave the pair with
	// no vote at all.
	upvote := models.Upvote{UserID: user.ID, PostID: postID}
	tx := h.db.Begin()
	if err := tx.Where("user_id = ? AND post_id = ?", user.ID, postID).Delete(&models.Downvote{}).Error; err != nil {
		tx.Rollback()
		Fail(c, http.StatusInternalServerError, "Resource downvote could not be deleted before adding upvote.")
		return
	}
	if err := tx.Create(&upvote).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race against a concurrent vote on the same pair; the
			// unique key already holds the invariant.
			Fail(c, http.StatusForbidden, "User already upvoted specified post.")
			return
		}
		Fail(c, http.StatusInternalServerError, "Could not create upvote.")
		return
	}
	if err := tx.Commit().Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not create upvote.")
		return
	}

	h.cache.Delete(postListCacheKey)
	OK(c, gin.H{"upvote": upvote})
}

// Downvote moves the pair to DOWN. Rejected if already DOWN; replaces UP.
func (h *VoteHandler) Downvote(c *gin.Context) {
	if !requireEmptyBody(c) {
		Fail(c, http.StatusBadRequest, "Invalid request. Request contains a body.")
		return
	}
	user := CurrentUser(c)
	postID, ok := h.targetPost(c)
	if !ok {
		return
	}

	var existing models.Downvote
	if err := h.db.Where("user_id = ? AND post_id = ?", user.ID, postID).First(&existing).Error; err == nil {
		Fail(c, http.StatusForbidden, "User already downvoted specified post.")
		return
	}

	downvote := models.Downvote{UserID: user.ID, PostID: postID}
	tx := h.db.Begin()
	if err := tx.Where("user_id = ? AND post_id = ?", user.ID, postID).Delete(&models.Upvote{}).Error; err != nil {
		tx.Rollback()
		Fail(c, http.StatusInternalServerError, "Resource upvote could not be deleted before adding downvote.")
		return
	}
	if err := tx.Create(&downvote).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Fail(c, http.StatusForbidden, "User already downvoted specified post.")
			return
		}
		Fail(c, http.StatusInternalServerError, "Could not create downvote.")
		return
	}
	if err := tx.Commit().Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Could not create downvote.")
		return
	}

	h.cache.Delete(postListCacheKey)
	OK(c, gin.H{"downvote": downvote})
}

// RemoveUpvote moves UP back to NONE. Removing a vote that was never cast
// is a reported failure, not a silent no-op.
func (h *VoteHandler) RemoveUpvote(c *gin.Context) {
	user := CurrentUser(c)
	postID, ok := h.targetPost(c)
	if !ok {
		return
	}

	var upvote models.Upvote
	if err := h.db.Where("user_id = ? AND post_id = ?", user.ID, postID).First(&upvote).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Resource upvote could not be deleted.")
		return
	}
	if err := h.db.Delete(&upvote).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Resource upvote could not be deleted.")
		return
	}

	h.cache.Delete(postListCacheKey)
	OK(c, gin.H{"upvote": upvote})
}

// RemoveDownvote moves DOWN back to NONE.
func (h *VoteHandler) RemoveDownvote(c *gin.Context) {
	user := CurrentUser(c)
	postID, ok := h.targetPost(c)
	if !ok {
		return
	}

	var downvote models.Downvote
	if err := h.db.Where("user_id = ? AND post_id = ?", user.ID, postID).First(&downvote).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Resource downvote could not be deleted.")
		return
	}
	if err := h.db.Delete(&downvote).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "Resource downvote could not be deleted.")
		return
	}

	h.cache.Delete(postListCacheKey)
	OK(c, gin.H{"downvote": downvote})
}
