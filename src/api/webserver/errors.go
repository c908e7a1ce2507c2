package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aegisai/civicchain/src/governance"
)

// writeError maps the governance error taxonomy onto HTTP statuses with a
// message specific enough to render directly.
func writeError(c *gin.Context, err error) {
	var verr *governance.ValidationError
	var closed *governance.VotingClosedError
	var ext *governance.ExternalServiceError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"err": verr.Error(), "field": verr.Field})
	case errors.As(err, &closed):
		c.JSON(http.StatusConflict, gin.H{"err": closed.Error()})
	case errors.Is(err, governance.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"err": "proposal not found"})
	case errors.Is(err, governance.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"err": "not authorised"})
	case errors.Is(err, governance.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"err": "proposal already finalised"})
	case errors.As(err, &ext):
		c.JSON(http.StatusBadGateway, gin.H{"err": ext.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
	}
}
