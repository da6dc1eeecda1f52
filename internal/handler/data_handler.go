package handler

import (
	"net/http"

	"tourops/internal/model"
	"tourops/internal/service"
	"tourops/pkg/response"

	"github.com/gin-gonic/gin"
)

type DataHandler struct {
	svc *service.DataService
}

func NewDataHandler(svc *service.DataService) *DataHandler {
	return &DataHandler{svc: svc}
}

func (h *DataHandler) RegisterRoutes(router *gin.RouterGroup) {
	data := router.Group("/api/data")
	{
		data.GET("/export", h.Export)
		data.POST("/import", h.Import)
		data.DELETE("", h.Clear)
	}
	backups := router.Group("/api/backups")
	{
		backups.GET("", h.ListBackups)
		backups.POST("", h.CreateBackup)
		backups.POST("/restore", h.RestoreBackup)
	}
}

type RestoreRequest struct {
	Name string `json:"name" binding:"required"`
}

// Export godoc
// @Summary  Export every record
// @Tags     data
// @Produce  json
// @Success  200  {object}  model.Snapshot
// @Router   /api/data/export [get]
func (h *DataHandler) Export(c *gin.Context) {
	snap, err := h.svc.Export(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="tourops-export.json"`)
	c.JSON(http.StatusOK, snap)
}

// Import godoc
// @Summary      Import a snapshot
// @Description  Adds the records keeping their ids. Nothing is stored when one record is rejected.
// @Tags         data
// @Accept       json
// @Produce      json
// @Param        snapshot  body  model.Snapshot  true  "Exported data"
// @Success      200  {object}  response.Response{data=service.ImportResult}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/data/import [post]
func (h *DataHandler) Import(c *gin.Context) {
	var snap model.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	res, err := h.svc.Import(c.Request.Context(), &snap)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// Clear godoc
// @Summary  Delete every record
// @Tags     data
// @Produce  json
// @Success  200  {object}  response.Response
// @Router   /api/data [delete]
func (h *DataHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"backend": h.svc.Backend()}))
}

// ListBackups godoc
// @Summary  List stored backups, newest first
// @Tags     backups
// @Produce  json
// @Success  200  {object}  response.Response
// @Failure  503  {object}  response.Response
// @Router   /api/backups [get]
func (h *DataHandler) ListBackups(c *gin.Context) {
	list, err := h.svc.ListBackups(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}

// CreateBackup godoc
// @Summary  Store a backup of every record
// @Tags     backups
// @Produce  json
// @Success  201  {object}  response.Response{data=backup.Info}
// @Failure  503  {object}  response.Response
// @Router   /api/backups [post]
func (h *DataHandler) CreateBackup(c *gin.Context) {
	info, err := h.svc.CreateBackup(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, info))
}

// RestoreBackup godoc
// @Summary      Replace every record with a backup
// @Tags         backups
// @Accept       json
// @Produce      json
// @Param        request  body  RestoreRequest  true  "Backup name"
// @Success      200  {object}  response.Response{data=service.ImportResult}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      503  {object}  response.Response
// @Router       /api/backups/restore [post]
func (h *DataHandler) RestoreBackup(c *gin.Context) {
	var req RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	res, err := h.svc.RestoreBackup(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
