package handler

import (
	"net/http"

	"tourops/internal/model"
	"tourops/internal/service"
	"tourops/pkg/pagination"
	"tourops/pkg/response"

	"github.com/gin-gonic/gin"
)

type TourHandler struct {
	svc *service.TourService
}

func NewTourHandler(svc *service.TourService) *TourHandler {
	return &TourHandler{svc: svc}
}

func (h *TourHandler) RegisterRoutes(router *gin.RouterGroup) {
	tours := router.Group("/api/tours")
	{
		tours.GET("", h.List)
		tours.GET("/:id", h.Get)
		tours.GET("/:id/summary", h.Summary)
		tours.POST("", h.Create)
		tours.PATCH("/:id", h.Update)
		tours.POST("/:id/toggle-status", h.ToggleStatus)
		tours.POST("/:id/duplicate", h.Duplicate)
		tours.DELETE("/:id", h.Delete)
	}
	registerLineItems(tours, "destinations", h.svc.Destinations)
	registerLineItems(tours, "expenses", h.svc.Expenses)
	registerLineItems(tours, "meals", h.svc.Meals)
	registerLineItems(tours, "allowances", h.svc.Allowances)
}

// List godoc
// @Summary      List tours
// @Description  Latest start date first. search matches the tour code and client name.
// @Tags         tours
// @Produce      json
// @Param        search  query  string  false  "Search text"
// @Param        status  query  string  false  "active, inactive or all"
// @Param        page    query  int     false  "Page number"
// @Param        limit   query  int     false  "Page size"
// @Success      200  {object}  response.Response
// @Router       /api/tours [get]
func (h *TourHandler) List(c *gin.Context) {
	q, ok := listQuery(c)
	if !ok {
		return
	}
	page := pagination.Parse(c)
	tours, total, err := h.svc.List(c.Request.Context(), q, page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, tours, page.Page, page.Limit, total))
}

// Get godoc
// @Summary  Get a tour with its line items and totals
// @Tags     tours
// @Produce  json
// @Param    id  path  string  true  "Tour id"
// @Success  200  {object}  response.Response{data=service.TourDetail}
// @Failure  404  {object}  response.Response
// @Router   /api/tours/{id} [get]
func (h *TourHandler) Get(c *gin.Context) {
	detail, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// Summary godoc
// @Summary  Settlement of a tour
// @Tags     tours
// @Produce  json
// @Param    id  path  string  true  "Tour id"
// @Success  200  {object}  response.Response{data=service.TourSummaryView}
// @Failure  404  {object}  response.Response
// @Router   /api/tours/{id}/summary [get]
func (h *TourHandler) Summary(c *gin.Context) {
	view, err := h.svc.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// Create godoc
// @Summary  Create a tour
// @Tags     tours
// @Accept   json
// @Produce  json
// @Param    tour  body  model.Tour  true  "Tour"
// @Success  201  {object}  response.Response{data=service.TourDetail}
// @Failure  400  {object}  response.Response
// @Failure  409  {object}  response.Response
// @Router   /api/tours [post]
func (h *TourHandler) Create(c *gin.Context) {
	var t model.Tour
	if err := c.ShouldBindJSON(&t); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}
	detail, err := h.svc.Create(c.Request.Context(), &t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, detail))
}

// Update godoc
// @Summary      Update a tour
// @Description  Line-item collections in the body are ignored.
// @Tags         tours
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Tour id"
// @Success      200  {object}  response.Response{data=service.TourDetail}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/tours/{id} [patch]
func (h *TourHandler) Update(c *gin.Context) {
	patch, ok := readPatch(c)
	if !ok {
		return
	}
	detail, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

func (h *TourHandler) ToggleStatus(c *gin.Context) {
	detail, err := h.svc.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

func (h *TourHandler) Duplicate(c *gin.Context) {
	detail, err := h.svc.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, detail))
}

func (h *TourHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": c.Param("id")}))
}

// registerLineItems mounts POST /:id/<path> and PUT|DELETE /:id/<path>/:itemId.
// Every route answers with the updated tour.
func registerLineItems[T any, PT model.LineItemPtr[T]](tours *gin.RouterGroup, path string, svc *service.LineItemService[T, PT]) {
	tours.POST("/:id/"+path, func(c *gin.Context) {
		var item T
		if err := c.ShouldBindJSON(&item); err != nil {
			badRequest(c, "Invalid request payload: "+err.Error())
			return
		}
		detail, err := svc.Add(c.Request.Context(), c.Param("id"), item)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, response.Success(http.StatusCreated, detail))
	})
	tours.PUT("/:id/"+path+"/:itemId", func(c *gin.Context) {
		var item T
		if err := c.ShouldBindJSON(&item); err != nil {
			badRequest(c, "Invalid request payload: "+err.Error())
			return
		}
		detail, err := svc.Update(c.Request.Context(), c.Param("id"), c.Param("itemId"), item)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
	})
	tours.DELETE("/:id/"+path+"/:itemId", func(c *gin.Context) {
		detail, err := svc.Remove(c.Request.Context(), c.Param("id"), c.Param("itemId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
	})
}
