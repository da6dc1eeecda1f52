package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"tourops/internal/model"
	"tourops/internal/service"
	"tourops/pkg/pagination"
	"tourops/pkg/response"

	"github.com/gin-gonic/gin"
)

// CatalogHandler exposes one master data kind under /api/<path>.
type CatalogHandler[T any, PT model.MasterPtr[T]] struct {
	path string
	svc  *service.CatalogService[T, PT]
}

func NewCatalogHandler[T any, PT model.MasterPtr[T]](path string, svc *service.CatalogService[T, PT]) *CatalogHandler[T, PT] {
	return &CatalogHandler[T, PT]{path: path, svc: svc}
}

func (h *CatalogHandler[T, PT]) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group("/api/" + h.path)
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
		g.POST("", h.Create)
		g.PATCH("/:id", h.Update)
		g.POST("/:id/toggle-status", h.ToggleStatus)
		g.POST("/:id/duplicate", h.Duplicate)
		g.DELETE("/:id", h.Delete)
	}
}

// List godoc
// @Summary      List catalog records
// @Description  Records ordered by name. search matches accent-insensitively.
// @Tags         catalogs
// @Produce      json
// @Param        kind    path   string  true   "guides, companies, nationalities, provinces, destinations, shoppings, expense-categories or detailed-expenses"
// @Param        search  query  string  false  "Search text"
// @Param        status  query  string  false  "active, inactive or all"
// @Param        page    query  int     false  "Page number"
// @Param        limit   query  int     false  "Page size"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/{kind} [get]
func (h *CatalogHandler[T, PT]) List(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}
	page := pagination.Parse(c)
	items, total, err := h.svc.List(c.Request.Context(), q, page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, items, page.Page, page.Limit, total))
}

// Get godoc
// @Summary  Get a catalog record
// @Tags     catalogs
// @Produce  json
// @Param    kind  path  string  true  "Catalog path"
// @Param    id    path  string  true  "Record id"
// @Success  200  {object}  response.Response
// @Failure  404  {object}  response.Response
// @Router   /api/{kind}/{id} [get]
func (h *CatalogHandler[T, PT]) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// Create godoc
// @Summary  Create a catalog record
// @Tags     catalogs
// @Accept   json
// @Produce  json
// @Param    kind  path  string  true  "Catalog path"
// @Success  201  {object}  response.Response
// @Failure  400  {object}  response.Response
// @Failure  409  {object}  response.Response
// @Router   /api/{kind} [post]
func (h *CatalogHandler[T, PT]) Create(c *gin.Context) {
	var item T
	if err := c.ShouldBindJSON(&item); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	created, err := h.svc.Create(c.Request.Context(), &item)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, created))
}

// Update godoc
// @Summary      Update a catalog record
// @Description  Fields missing from the body keep their stored value.
// @Tags         catalogs
// @Accept       json
// @Produce      json
// @Param        kind  path  string  true  "Catalog path"
// @Param        id    path  string  true  "Record id"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/{kind}/{id} [patch]
func (h *CatalogHandler[T, PT]) Update(c *gin.Context) {
	patch, ok := readPatch(c)
	if !ok {
		return
	}
	item, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// ToggleStatus flips a record between active and inactive.
func (h *CatalogHandler[T, PT]) ToggleStatus(c *gin.Context) {
	item, err := h.svc.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// Duplicate stores a copy of a record under a fresh id and name.
func (h *CatalogHandler[T, PT]) Duplicate(c *gin.Context) {
	item, err := h.svc.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

func (h *CatalogHandler[T, PT]) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": c.Param("id")}))
}

// readPatch reads a JSON object body.
func readPatch(c *gin.Context) (json.RawMessage, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		badRequest(c, "Invalid request payload: body must be a JSON object")
		return nil, false
	}
	return body, true
}
