package handlers

import (
	"errors"
	"net/http"

	"threadit/internal/models"
	"threadit/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// createUser hashes the password and stores the new user.
func (h *AuthHandler) createUser(username, password string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username: username,
		Password: hash,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates an account and returns a signed token for it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := bindStrict(c, &req, "username", "password"); err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		Fail(c, http.StatusBadRequest, "Invalid request data. Required request keys are missing.")
		return
	}

	user, err := h.createUser(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Fail(c, http.StatusConflict, "Username already exists")
			return
		}
		Fail(c, http.StatusInternalServerError, "Could not create new user.")
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not sign token.")
		return
	}
	OK(c, gin.H{"token": token})
}

// Login verifies credentials and returns a fresh token. Unknown username
// and wrong password produce the identical error so neither check leaks.
func (h *AuthHandler) Login(c *gin.Context) {
	// Requests that already carry a valid identity just get a new token.
	if user := CurrentUser(c); user != nil {
		token, err := utils.GenerateToken(user.ID)
		if err != nil {
			Fail(c, http.StatusInternalServerError, "Could not sign token.")
			return
		}
		OK(c, gin.H{"token": token})
		return
	}

	var req credentialsRequest
	if err := bindStrict(c, &req, "username", "password"); err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var user models.User
	if err := h.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		Fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		Fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(user.ID)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "Could not sign token.")
		return
	}
	OK(c, gin.H{"token": token})
}

// Token returns the sanitized user behind the presented bearer token.
// The password hash never serializes (json:"-" on the model).
func (h *AuthHandler) Token(c *gin.Context) {
	OK(c, gin.H{"user": CurrentUser(c)})
}
