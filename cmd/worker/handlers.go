package main

import (
	"github.com/hibiken/asynq"

	paymentJob "course-payments/internal/domains/payment/job"
	"course-payments/internal/infrastructure/email"
	emailjob "course-payments/internal/infrastructure/email/job"
	"course-payments/internal/shared"
	"course-payments/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Payment reconciliation
	webhook        *paymentJob.WebhookHandler
	verifyPayment  *paymentJob.VerifyPaymentHandler
	completeEnroll *paymentJob.CompleteEnrollmentHandler
	reconcileStale *paymentJob.ReconcileStaleHandler

	// Email
	receiptEmail *emailjob.ReceiptEmailHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container, cfg *Config) *HandlerRegistry {
	emailSvc := email.NewSMTPEmailService(email.SMTPConfig{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	})

	return &HandlerRegistry{
		webhook:        paymentJob.NewWebhookHandler(c.PaymentService),
		verifyPayment:  paymentJob.NewVerifyPaymentHandler(c.PaymentService),
		completeEnroll: paymentJob.NewCompleteEnrollmentHandler(c.PaymentService),
		reconcileStale: paymentJob.NewReconcileStaleHandler(c.PaymentService, cfg.StaleSweepLimit),

		receiptEmail: emailjob.NewReceiptEmailHandler(emailSvc),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Payment tasks
	mux.HandleFunc(shared.TypePaymentWebhook, h.webhook.ProcessTask)
	mux.HandleFunc(shared.TypePaymentVerify, h.verifyPayment.ProcessTask)
	mux.HandleFunc(shared.TypePaymentCompleteEnroll, h.completeEnroll.ProcessTask)
	mux.HandleFunc(shared.TypePaymentReconcileStale, h.reconcileStale.ProcessTask)

	// Email tasks
	mux.HandleFunc(shared.TypeSendReceiptEmail, h.receiptEmail.ProcessTask)
}
