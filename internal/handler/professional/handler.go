package professional

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asistia/care-api/internal/handler"
	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/service/professional"
)

type Handler struct {
	service *professional.Service
}

func NewHandler(service *professional.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	professionals := r.Group("/profesionales")
	{
		professionals.POST("", h.Create)
		professionals.GET("", h.List)
		professionals.GET("/:id", h.Get)
		professionals.PUT("/:id", h.Update)
		professionals.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.CreateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("cuerpo de la solicitud inválido"))
		return
	}
	handler.Respond(c, http.StatusCreated, h.service.Create(c.Request.Context(), caller, &req))
}

func (h *Handler) Get(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}
	handler.Respond(c, http.StatusOK, h.service.Get(c.Request.Context(), caller, id))
}

func (h *Handler) List(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	page, ok := handler.PageFrom(c)
	if !ok {
		return
	}
	handler.Respond(c, http.StatusOK, h.service.List(c.Request.Context(), caller, page))
}

func (h *Handler) Update(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateProfessionalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("cuerpo de la solicitud inválido"))
		return
	}
	handler.Respond(c, http.StatusOK, h.service.Update(c.Request.Context(), caller, id, &req))
}

func (h *Handler) Delete(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	id, ok := handler.PathID(c, "id")
	if !ok {
		return
	}
	handler.Respond(c, http.StatusOK, h.service.Delete(c.Request.Context(), caller, id))
}
