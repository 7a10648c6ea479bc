// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/order"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"github.com/technexus/storefront-backend/internal/pkg/pdf"
)

// InvoiceRenderer turns an order into a PDF document
type InvoiceRenderer interface {
	GenerateInvoice(o *order.Order) (*bytes.Buffer, error)
}

// InvoiceHandler handles invoice-related endpoints
type InvoiceHandler struct {
	orders   OrderService
	renderer InvoiceRenderer
	log      *logrus.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orders OrderService, renderer InvoiceRenderer, log *logrus.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		orders:   orders,
		renderer: renderer,
		log:      log,
	}
}

// GenerateInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	// Get enforces ownership.
	o, err := h.orders.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	pdfBuffer, err := h.renderer.GenerateInvoice(o)
	if err != nil {
		respondError(c, h.log, apperror.Persistence("failed to generate invoice", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", pdf.InvoiceNumber(o)))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}
