package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asistia/care-api/internal/handler"
	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/service/patient"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/pacientes")
	{
		patients.POST("", h.Create)
		patients.GET("", h.List)
		patients.GET("/buscar", h.Search)
		patients.GET("/:id", h.Get)
		patients.PUT("/:id", h.Update)
		patients.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.CreatePatientRequest
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

func (h *Handler) Search(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.SearchPatientsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("parámetros de búsqueda inválidos"))
		return
	}
	handler.Respond(c, http.StatusOK, h.service.Search(c.Request.Context(), caller, &req))
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
	var req model.UpdatePatientRequest
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
