package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskdeck/internal/remote"
)

var errInvalidRequestBody = errors.New("invalid request body")

// apiError is the JSON body of every non-2xx response.
type apiError struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Field  string `json:"field,omitempty"`
	Entity string `json:"entity,omitempty"`
	ID     string `json:"id,omitempty"`
}

func abortBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, apiError{Error: err.Error(), Kind: "validation"})
}

func abortNotFound(c *gin.Context, entity, id string) {
	nf := remote.NotFoundError{Kind: entity, ID: id}
	c.AbortWithStatusJSON(http.StatusNotFound, apiError{Error: nf.Error(), Kind: "not_found", Entity: entity, ID: id})
}

// abortErr maps service errors: validation → 400, not found → 404, anything else → 503.
func (s *Server) abortErr(c *gin.Context, err error) {
	var ve remote.ValidationError
	var nf remote.NotFoundError
	switch {
	case errors.As(err, &ve):
		c.AbortWithStatusJSON(http.StatusBadRequest, apiError{Error: ve.Message, Kind: "validation", Field: ve.Field})
	case errors.As(err, &nf):
		abortNotFound(c, nf.Kind, nf.ID)
	default:
		s.log.Error().Err(err).Str("path", c.FullPath()).Msg("backend failure")
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, apiError{Error: err.Error(), Kind: "transient"})
	}
}
