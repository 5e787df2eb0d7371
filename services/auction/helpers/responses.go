package helpers

import (
	"net/http"

	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// OK sends a 200 response carrying data
func OK(c *gin.Context, data any, message string) {
	utils.JSONResponse(c, http.StatusOK, data, message)
}

// JSONList sends a 200 response; callers pass non-nil slices so data is never null
func JSONList[T any](c *gin.Context, items []T, message string) {
	if items == nil {
		items = []T{}
	}
	utils.JSONResponse(c, http.StatusOK, items, message)
}

// Created sends a 201 response pointing the client at location
func Created(c *gin.Context, data any, message, location string) {
	utils.JSONRedirect(c, http.StatusCreated, data, message, location)
}

// Redirect sends a 200 response pointing the client at location
func Redirect(c *gin.Context, data any, message, location string) {
	utils.JSONRedirect(c, http.StatusOK, data, message, location)
}
