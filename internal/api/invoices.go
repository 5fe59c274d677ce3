package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kareemeredaze/maitre-seo/internal/model"
)

const logEventListInvoices = "list_invoices"

// InvoiceHandlers serves the caller's invoices. Invoices are a read-only
// projection; billing happens elsewhere.
type InvoiceHandlers struct {
	database *gorm.DB
	logger   *zap.Logger
}

// NewInvoiceHandlers constructs InvoiceHandlers.
func NewInvoiceHandlers(database *gorm.DB, logger *zap.Logger) *InvoiceHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceHandlers{database: database, logger: logger}
}

// ListInvoices returns every invoice owned by the caller, newest first.
func (handlers *InvoiceHandlers) ListInvoices(context *gin.Context) {
	currentUser, ok := CurrentUserFromContext(context)
	if !ok {
		context.JSON(http.StatusUnauthorized, gin.H{jsonKeyError: errorValueUnauthorized})
		return
	}

	var invoices []model.Invoice
	queryErr := handlers.database.WithContext(context.Request.Context()).
		Where("user_id = ?", currentUser.ID).
		Order("created_at desc").
		Find(&invoices).Error
	if queryErr != nil {
		handlers.logger.Warn(logEventListInvoices, zap.Error(queryErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: messageQueryFailed})
		return
	}

	responses := make([]invoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		responses = append(responses, toInvoiceResponse(invoice))
	}

	context.JSON(http.StatusOK, responses)
}
