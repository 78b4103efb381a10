package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

type bookHandler struct {
	bookService portssvc.BookSvc
	syncService portssvc.SyncSvc
	store       *replica.Store
}

func registerBookRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, store *replica.Store) {
	h := &bookHandler{
		bookService: services.Book,
		syncService: services.Sync,
		store:       store,
	}

	rg.GET("/businesses/:business_id/books", h.listBooks)
	rg.POST("/businesses/:business_id/books", h.createBook)

	books := rg.Group("/books/:book_id")
	{
		books.GET("", h.getBook)
		books.PUT("", h.updateBook)
		books.DELETE("", h.deleteBook)
		books.POST("/duplicate", h.duplicateBook)
		books.POST("/transfer", h.transferBook)

		books.GET("/custom-fields", h.listCustomFields)
		books.POST("/custom-fields", h.addCustomField)
	}

	fields := rg.Group("/custom-fields/:field_id")
	{
		fields.PUT("/enabled", h.setCustomFieldEnabled)
		fields.PUT("/required", h.setCustomFieldRequired)
		fields.DELETE("", h.deleteCustomField)
	}
}

func (h *bookHandler) listBooks(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	respondData(c, h.store.BooksByBusiness(c.Param("business_id")), h.syncService.InProgress())
}

func (h *bookHandler) getBook(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	book, found := h.store.Book(c.Param("book_id"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return
	}
	respondData(c, book, h.syncService.InProgress())
}

func (h *bookHandler) createBook(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	book, err := h.bookService.CreateBook(c.Request.Context(), who, c.Param("business_id"), req)
	if err != nil {
		respondError(c, err, "Failed to create book")
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *bookHandler) updateBook(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	book, err := h.bookService.UpdateBook(c.Request.Context(), who, c.Param("book_id"), req)
	if err != nil {
		respondError(c, err, "Failed to update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *bookHandler) deleteBook(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.bookService.DeleteBook(c.Request.Context(), who, c.Param("book_id")); err != nil {
		respondError(c, err, "Failed to delete book")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *bookHandler) duplicateBook(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.DuplicateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	newID, err := h.bookService.DuplicateBook(c.Request.Context(), who, c.Param("book_id"), req)
	if err != nil {
		respondError(c, err, "Failed to duplicate book")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"new_book_id": newID})
}

func (h *bookHandler) transferBook(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.TransferBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.bookService.TransferBook(c.Request.Context(), who, c.Param("book_id"), req); err != nil {
		respondError(c, err, "Failed to transfer book")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *bookHandler) listCustomFields(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	respondData(c, h.store.CustomFieldsByBook(c.Param("book_id")), h.syncService.InProgress())
}

func (h *bookHandler) addCustomField(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.CreateCustomFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	field, err := h.bookService.AddCustomField(c.Request.Context(), who, c.Param("book_id"), req)
	if err != nil {
		respondError(c, err, "Failed to add custom field")
		return
	}
	c.JSON(http.StatusCreated, field)
}

func (h *bookHandler) setCustomFieldEnabled(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.ToggleCustomFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.bookService.SetCustomFieldEnabled(c.Request.Context(), who, c.Param("field_id"), *req.Value); err != nil {
		respondError(c, err, "Failed to update custom field")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *bookHandler) setCustomFieldRequired(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.ToggleCustomFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.bookService.SetCustomFieldRequired(c.Request.Context(), who, c.Param("field_id"), *req.Value); err != nil {
		respondError(c, err, "Failed to update custom field")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *bookHandler) deleteCustomField(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.bookService.DeleteCustomField(c.Request.Context(), who, c.Param("field_id")); err != nil {
		respondError(c, err, "Failed to delete custom field")
		return
	}
	c.Status(http.StatusNoContent)
}
