package handlers

import (
	"questhunt/apperr"

	"github.com/gin-gonic/gin"
)

// respondError maps a domain error onto the wire. ConcurrencyConflict keeps
// its code visible so clients can retry transparently.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error": err.Error(),
		"code":  apperr.CodeOf(err),
	})
}
