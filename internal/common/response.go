package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// All endpoints answer with the same envelope:
// {"status": "success"|"error", "message": ..., "data": ...}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   data,
	})
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   data,
	})
}

func OKMessage(c *gin.Context, msg string, data any) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": msg,
		"data":    data,
	})
}

func Fail(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{
		"status":  "error",
		"message": msg,
	})
}
