package history

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asistia/care-api/internal/handler"
	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/service/history"
)

type Handler struct {
	service *history.Service
}

func NewHandler(service *history.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	records := r.Group("/historiales")
	{
		records.POST("", h.Create)
		records.GET("", h.List)
		records.GET("/buscar", h.Search)
		records.GET("/:id", h.Get)
		records.PUT("/:id", h.Update)
		records.DELETE("/:id", h.Delete)
	}
	r.GET("/pacientes/:id/historiales", h.ListByPatient)
}

func (h *Handler) Create(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.CreateMedicalHistoryRequest
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

func (h *Handler) ListByPatient(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	patientID, ok := handler.PathID(c, "id")
	if !ok {
		return
	}
	page, ok := handler.PageFrom(c)
	if !ok {
		return
	}
	handler.Respond(c, http.StatusOK, h.service.ListByPatient(c.Request.Context(), caller, patientID, page))
}

func (h *Handler) Search(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.SearchRecordsRequest
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
	var req model.UpdateMedicalHistoryRequest
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
