package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"course-payments/internal/domains/payment/gateway/paystack"
	"course-payments/internal/domains/payment/model"
	"course-payments/internal/domains/payment/service"
	"course-payments/internal/shared"
	res "course-payments/internal/shared/response"
	"course-payments/pkg/logger"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// =====================================================
// USER PAYMENT ENDPOINTS
// =====================================================

// Initialize starts a payment for a course or an existing enrollment
// POST /api/v1/payments/initialize
func (h *PaymentHandler) Initialize(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.InitializePaymentRequest
	if err := bindJSON(c, &req); err != nil {
		res.BadRequest(c, err.Error())
		return
	}

	response, err := h.paymentService.Initialize(c.Request.Context(), userID, req)
	if err != nil {
		writePaymentError(c, err)
		return
	}

	res.Success(c, http.StatusCreated, response)
}

// Verify reconciles one of the caller's payments with the gateway, synchronously
// GET /api/v1/payments/verify/:reference
func (h *PaymentHandler) Verify(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	response, err := h.paymentService.VerifyUserPayment(c.Request.Context(), userID, c.Param("reference"))
	if err != nil {
		writePaymentError(c, err)
		return
	}
	res.Success(c, http.StatusOK, response)
}

// GetStatus returns the cached status view
// GET /api/v1/payments/status/:reference
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	view, err := h.paymentService.GetPaymentStatus(c.Request.Context(), userID, c.Param("reference"))
	if err != nil {
		writePaymentError(c, err)
		return
	}
	res.Success(c, http.StatusOK, view)
}

// ListMyPayments
// GET /api/v1/payments/history
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	var req model.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		res.BadRequest(c, "Invalid query parameters")
		return
	}

	response, err := h.paymentService.ListUserPayments(c.Request.Context(), userID, req)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	writeList(c, response)
}

// GetPayment
// GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		res.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPaymentByID(c.Request.Context(), userID, paymentID)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	res.Success(c, http.StatusOK, payment)
}

// Retry starts a new payment for a failed one
// POST /api/v1/payments/:id/retry
func (h *PaymentHandler) Retry(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		res.BadRequest(c, "Invalid payment ID")
		return
	}

	response, err := h.paymentService.RetryPayment(c.Request.Context(), paymentID, userID)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	res.Success(c, http.StatusCreated, response)
}

// =====================================================
// WEBHOOK
// =====================================================

// PaystackWebhook authenticates and queues a gateway event. It never does the
// reconciliation inline.
// POST /api/v1/webhooks/paystack
func (h *PaymentHandler) PaystackWebhook(c *gin.Context) {
	// The signature covers the exact bytes received.
	body, err := c.GetRawData()
	if err != nil {
		res.BadRequest(c, "Unable to read body")
		return
	}

	result, err := h.paymentService.ProcessWebhook(c.Request.Context(), body, c.GetHeader(paystack.SignatureHeader))
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			res.BadRequest(c, "Invalid webhook payload")
			return
		}
		res.InternalServerError(c, "Failed to accept webhook")
		return
	}

	if !result.Valid {
		logger.Warn("webhook signature rejected", map[string]interface{}{
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString("request_id"),
		})
		c.JSON(http.StatusOK, gin.H{"received": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// =====================================================
// ADMIN ENDPOINTS
// =====================================================

// AdminListPayments
// GET /api/v1/admin/payments
func (h *PaymentHandler) AdminListPayments(c *gin.Context) {
	var req model.ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		res.BadRequest(c, "Invalid query parameters")
		return
	}

	response, err := h.paymentService.AdminListPayments(c.Request.Context(), req)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	writeList(c, response)
}

// CancelPayment
// POST /api/v1/admin/payments/:id/cancel
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	operatorID, ok := getUserID(c)
	if !ok {
		res.Unauthorized(c, "Unauthorized")
		return
	}

	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		res.BadRequest(c, "Invalid payment ID")
		return
	}

	var req model.CancelPaymentRequest
	if err := bindJSON(c, &req); err != nil {
		res.BadRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		res.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeValidation, err.Error())
		return
	}

	payment, err := h.paymentService.CancelPayment(c.Request.Context(), paymentID, operatorID, req.Reason)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	res.Success(c, http.StatusOK, payment)
}

// RevenueStats
// GET /api/v1/admin/payments/stats?period=month
func (h *PaymentHandler) RevenueStats(c *gin.Context) {
	stats, err := h.paymentService.GetRevenueStats(c.Request.Context(), c.DefaultQuery("period", model.PeriodMonth))
	if err != nil {
		writePaymentError(c, err)
		return
	}
	res.Success(c, http.StatusOK, stats)
}

// ExportRevenueStats downloads the revenue aggregate as xlsx
// GET /api/v1/admin/payments/stats/export?period=month
func (h *PaymentHandler) ExportRevenueStats(c *gin.Context) {
	period := c.DefaultQuery("period", model.PeriodMonth)

	f, err := h.paymentService.ExportRevenueStats(c.Request.Context(), period)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="revenue-%s.xlsx"`, period))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		logger.Error("failed to write revenue export", err)
	}
}

// =====================================================
// HELPERS
// =====================================================

// mapPaymentError maps domain errors to HTTP status codes.
func mapPaymentError(err error) (statusCode int, errorCode string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, model.ErrCodeNotFound
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, model.ErrCodeValidation
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, model.ErrCodeConflict
	case errors.Is(err, model.ErrGatewayUnavailable):
		return http.StatusBadGateway, model.ErrCodeGateway
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// writePaymentError never leaks internal error text; PaymentError messages are user-facing.
func writePaymentError(c *gin.Context, err error) {
	statusCode, code := mapPaymentError(err)

	message := "Internal server error"
	if pe, ok := model.AsPaymentError(err); ok {
		message = pe.Message
	}
	if statusCode == http.StatusInternalServerError {
		logger.ErrorWithFields("payment request failed", err, map[string]interface{}{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		})
	}

	res.ErrorResponse(c, statusCode, code, message)
}

func writeList(c *gin.Context, list *model.ListPaymentsResponse) {
	res.SuccessWithMeta(c, http.StatusOK, list.Payments, &res.Meta{
		Page:       list.Pagination.Page,
		Limit:      list.Pagination.Limit,
		Total:      list.Pagination.Total,
		TotalPages: list.Pagination.TotalPages,
	})
}

func getUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(shared.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
