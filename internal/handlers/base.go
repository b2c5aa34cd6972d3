package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"

	"threadit/internal/middleware"
	"threadit/internal/models"

	"github.com/gin-gonic/gin"
)

// Every response uses one envelope: {success:true, ...payload} or
// {success:false, error}.

func OK(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

// CurrentUser returns the user resolved by the LoadUser middleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}

var (
	errEmptyBody     = errors.New("Invalid request. Request body is empty or non-existant.")
	errMalformedBody = errors.New("Invalid request. Request body is not valid JSON.")
	errErroneousKeys = errors.New("Invalid request data. Erroneous keys contained in the request.")
)

// bindStrict decodes the request body into dst and rejects empty bodies
// and any key outside the allowed set. Mutation endpoints are not
// partial-schema tolerant: an unknown key fails the whole request before
// storage is touched.
func bindStrict(c *gin.Context, dst any, allowed ...string) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return errMalformedBody
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return errMalformedBody
	}
	if len(raw) == 0 {
		return errEmptyBody
	}
	for key := range raw {
		if !slices.Contains(allowed, key) {
			return errErroneousKeys
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return errMalformedBody
	}
	return nil
}

// requireEmptyBody reports whether the request carries no payload. Routes
// like votes take all their input from the path and reject any body.
func requireEmptyBody(c *gin.Context) bool {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return false
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return true
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return false
	}
	return len(raw) == 0
}
