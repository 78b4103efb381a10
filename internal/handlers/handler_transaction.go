package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finotbook/cashbook/internal/core/derive"
	"github.com/finotbook/cashbook/internal/core/domain"
	portssvc "github.com/finotbook/cashbook/internal/core/ports/services"
	"github.com/finotbook/cashbook/internal/dto"
	"github.com/finotbook/cashbook/internal/replica"
)

type transactionHandler struct {
	transactionService portssvc.TransactionSvc
	syncService        portssvc.SyncSvc
	store              *replica.Store
}

func registerTransactionRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer, store *replica.Store) {
	h := &transactionHandler{
		transactionService: services.Transaction,
		syncService:        services.Sync,
		store:              store,
	}

	rg.GET("/books/:book_id/transactions", h.listTransactions)
	rg.POST("/books/:book_id/transactions", h.addTransaction)
	rg.POST("/books/:book_id/transactions/bulk", h.bulkAddTransactions)

	rg.PUT("/transactions/:transaction_id", h.updateTransaction)
	rg.DELETE("/transactions/:transaction_id", h.deleteTransaction)
}

// listTransactions serves the derived entry view: the replica's rows for the
// book, filtered, annotated with running balances and optionally grouped by
// calendar day. Totals always describe the filtered subset.
func (h *transactionHandler) listTransactions(c *gin.Context) {
	if _, ok := identity(c); !ok {
		return
	}
	var query dto.TransactionFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}
	filters, err := filtersFromQuery(query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows := h.store.TransactionsByBook(c.Param("book_id"))
	filtered := derive.Filter(rows, filters, time.Now())
	entries := derive.WithRunningBalance(filtered)
	credits, debits, net := derive.Totals(filtered)

	body := gin.H{
		"totals": gin.H{"credits": credits, "debits": debits, "net": net},
	}
	if query.GroupByDay {
		body["groups"] = derive.GroupByDay(entries, time.Local)
	} else {
		body["entries"] = entries
	}
	respondData(c, body, h.syncService.InProgress())
}

func filtersFromQuery(q dto.TransactionFilterQuery) (derive.Filters, error) {
	f := derive.Filters{
		Type:        domain.TransactionType(q.Type),
		MemberID:    q.Member,
		Category:    q.Category,
		PaymentMode: q.PaymentMode,
		ContactID:   q.Contact,
		Search:      q.Search,
		Preset:      derive.DatePreset(q.Preset),
	}
	if q.From != "" || q.To != "" {
		var r derive.DateRange
		var err error
		if q.From != "" {
			if r.From, err = time.ParseInLocation("2006-01-02", q.From, time.Local); err != nil {
				return derive.Filters{}, err
			}
		}
		if q.To != "" {
			if r.To, err = time.ParseInLocation("2006-01-02", q.To, time.Local); err != nil {
				return derive.Filters{}, err
			}
		}
		f.Range = &r
	}
	return f, nil
}

func (h *transactionHandler) addTransaction(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	txn, err := h.transactionService.AddTransaction(c.Request.Context(), who, c.Param("book_id"), req)
	if err != nil {
		respondError(c, err, "Failed to add transaction")
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func (h *transactionHandler) bulkAddTransactions(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.BulkCreateTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	txns, err := h.transactionService.BulkAddTransactions(c.Request.Context(), who, c.Param("book_id"), req)
	if err != nil {
		respondError(c, err, "Failed to import transactions")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": len(txns), "transactions": txns})
}

func (h *transactionHandler) updateTransaction(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), who, c.Param("transaction_id"), req)
	if err != nil {
		respondError(c, err, "Failed to update transaction")
		return
	}
	c.JSON(http.StatusOK, txn)
}

func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	who, ok := identity(c)
	if !ok {
		return
	}
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), who, c.Param("transaction_id")); err != nil {
		respondError(c, err, "Failed to delete transaction")
		return
	}
	c.Status(http.StatusNoContent)
}
