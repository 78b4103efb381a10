package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

// businessHandler serves business reads from the replica and routes
// mutations through the business service.
type businessHandler struct {
	businessService portssvc.BusinessSvc
	syncService     portssvc.SyncSvc
	store           *replica.Store
}

func registerBusinessRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, store *replica.Store) {
	h := &businessHandler{
		businessService: services.Business,
		syncService:     services.Sync,
		store:           store,
	}

	rg.GET("/profile", h.getProfile)

	businesses := rg.Group("/businesses")
	{
		businesses.GET("", h.listBusinesses)
		businesses.POST("", h.createBusiness)
	}

	specific := rg.Group("/businesses/:business_id")
	{
		specific.GET("", h.getBusiness)
		specific.PUT("", h.updateBusiness)
		specific.DELETE("", h.deleteBusiness)
		specific.POST("/select", h.selectBusiness)
		specific.POST("/transfer-ownership", h.transferOwnership)
	}
}

func (h *businessHandler) getProfile(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	profile, found := h.store.Profile(who.UserID)
	if !found {
		respondData(c, nil, h.syncService.InProgress())
		return
	}
	respondData(c, profile, h.syncService.InProgress())
}

func (h *businessHandler) listBusinesses(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	respondData(c, h.store.Businesses(), h.syncService.InProgress())
}

func (h *businessHandler) getBusiness(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	business, found := h.store.Business(c.Param("business_id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Business not found"})
		return
	}
	respondData(c, business, h.syncService.InProgress())
}

func (h *businessHandler) createBusiness(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	business, err := h.businessService.CreateBusiness(c.Request.Context(), who, req)
	if err != nil {
		respondError(c, err, "Failed to create business")
		return
	}
	c.JSON(http.StatusCreated, business)
}

func (h *businessHandler) updateBusiness(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	business, err := h.businessService.UpdateBusiness(c.Request.Context(), who, c.Param("business_id"), req)
	if err != nil {
		respondError(c, err, "Failed to update business")
		return
	}
	c.JSON(http.StatusOK, business)
}

func (h *businessHandler) deleteBusiness(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.businessService.DeleteBusiness(c.Request.Context(), who, c.Param("business_id")); err != nil {
		respondError(c, err, "Failed to delete business")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *businessHandler) selectBusiness(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.businessService.SwitchBusiness(c.Request.Context(), who, c.Param("business_id")); err != nil {
		respondError(c, err, "Failed to switch business")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *businessHandler) transferOwnership(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.TransferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.businessService.TransferOwnership(c.Request.Context(), who, c.Param("business_id"), req); err != nil {
		respondError(c, err, "Failed to transfer ownership")
		return
	}
	c.Status(http.StatusNoContent)
}
