package handler

import (
	"tourops/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterAll mounts every API route on router.
func RegisterAll(router *gin.RouterGroup, svc *service.Services) {
	NewCatalogHandler("guides", svc.Guides).RegisterRoutes(router)
	NewCatalogHandler("companies", svc.Companies).RegisterRoutes(router)
	NewCatalogHandler("nationalities", svc.Nationalities).RegisterRoutes(router)
	NewCatalogHandler("provinces", svc.Provinces).RegisterRoutes(router)
	NewCatalogHandler("destinations", svc.TouristDestinations).RegisterRoutes(router)
	NewCatalogHandler("shoppings", svc.Shoppings).RegisterRoutes(router)
	NewCatalogHandler("expense-categories", svc.ExpenseCategories).RegisterRoutes(router)
	NewCatalogHandler("detailed-expenses", svc.DetailedExpenses).RegisterRoutes(router)
	NewTourHandler(svc.Tours).RegisterRoutes(router)
	NewDataHandler(svc.Data).RegisterRoutes(router)
}
