package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/asistia/care-api/internal/middleware"
	"github.com/asistia/care-api/internal/model"
)

// Every endpoint answers with the same envelope; the success flag, not
// the HTTP status, tells the caller whether the operation worked.
// Failed operations still answer 200 so existing consumers keep
// parsing one shape.

// Respond writes the envelope, using okStatus only when the operation
// succeeded.
func Respond(c *gin.Context, okStatus int, resp *model.Response) {
	if resp.Success {
		c.JSON(okStatus, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Caller pulls the authenticated caller out of the request context. A
// missing caller means the route was registered without the auth
// middleware; answer 401 rather than guessing.
func Caller(c *gin.Context) (model.Caller, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, model.Fail("no autenticado"))
	}
	return caller, ok
}

// PathID parses a positive int64 path parameter.
func PathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, model.Fail("identificador inválido"))
		return 0, false
	}
	return id, true
}

// PageFrom reads limit/offset query parameters; absent values default
// to zero.
func PageFrom(c *gin.Context) (model.Page, bool) {
	var page model.Page
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("parámetros de paginación inválidos"))
		return model.Page{}, false
	}
	return page, true
}
