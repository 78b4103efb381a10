package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

// lookupHandler covers the business-scoped lookup lists plus the global
// currency reference table.
type lookupHandler struct {
	lookupService portssvc.LookupSvc
	syncService   portssvc.SyncSvc
	store         *replica.Store
}

func registerLookupRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, store *replica.Store) {
	h := &lookupHandler{
		lookupService: services.Lookup,
		syncService:   services.Sync,
		store:         store,
	}

	rg.GET("/currencies", h.listCurrencies)

	scoped := rg.Group("/businesses/:business_id")
	{
		scoped.GET("/categories", h.listCategories)
		scoped.POST("/categories", h.addCategory)
		scoped.GET("/payment-methods", h.listPaymentMethods)
		scoped.POST("/payment-methods", h.addPaymentMethod)
		scoped.GET("/contacts", h.listContacts)
		scoped.POST("/contacts", h.addContact)
	}

	rg.DELETE("/categories/:category_id", h.deleteCategory)
	rg.DELETE("/payment-methods/:payment_method_id", h.deletePaymentMethod)
	rg.DELETE("/contacts/:contact_id", h.deleteContact)
}

func (h *lookupHandler) listCurrencies(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	respondData(c, h.store.Currencies(), h.syncService.InProgress())
}

func (h *lookupHandler) listCategories(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	respondData(c, h.store.CategoriesByBusiness(c.Param("business_id")), h.syncService.InProgress())
}

func (h *lookupHandler) addCategory(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := h.lookupService.AddCategory(c.Request.Context(), who, c.Param("business_id"), req)
	if err != nil {
		respondError(c, err, "Failed to add category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *lookupHandler) deleteCategory(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.lookupService.DeleteCategory(c.Request.Context(), who, c.Param("category_id")); err != nil {
		respondError(c, err, "Failed to delete category")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *lookupHandler) listPaymentMethods(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	respondData(c, h.store.PaymentMethodsByBusiness(c.Param("business_id")), h.syncService.InProgress())
}

func (h *lookupHandler) addPaymentMethod(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.CreatePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	method, err := h.lookupService.AddPaymentMethod(c.Request.Context(), who, c.Param("business_id"), req)
	if err != nil {
		respondError(c, err, "Failed to add payment method")
		return
	}
	c.JSON(http.StatusCreated, method)
}

func (h *lookupHandler) deletePaymentMethod(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.lookupService.DeletePaymentMethod(c.Request.Context(), who, c.Param("payment_method_id")); err != nil {
		respondError(c, err, "Failed to delete payment method")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *lookupHandler) listContacts(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	respondData(c, h.store.ContactsByBusiness(c.Param("business_id")), h.syncService.InProgress())
}

func (h *lookupHandler) addContact(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	contact, err := h.lookupService.AddContact(c.Request.Context(), who, c.Param("business_id"), req)
	if err != nil {
		respondError(c, err, "Failed to add contact")
		return
	}
	c.JSON(http.StatusCreated, contact)
}

func (h *lookupHandler) deleteContact(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.lookupService.DeleteContact(c.Request.Context(), who, c.Param("contact_id")); err != nil {
		respondError(c, err, "Failed to delete contact")
		return
	}
	c.Status(http.StatusNoContent)
}
