package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/hostboard-backend/internal/apperrors"
	"github.com/ArowuTest/hostboard-backend/internal/middleware"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxPageSize = 100

// respondError writes err with the status its type maps to
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

// pathID parses the named path parameter as an ObjectID, writing a 400 on failure
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// pagination reads page and limit query parameters
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = 20
	}
	return page, limit
}

// caller returns the authenticated caller or writes a 401
func caller(c *gin.Context) (models.CallerContext, bool) {
	cc, ok := middleware.GetCaller(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
	}
	return cc, ok
}

// paged is the listing envelope shared by every collection endpoint
type paged struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}
