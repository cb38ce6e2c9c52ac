package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	enrollmentModel "course-payments/internal/domains/enrollment/model"
	"course-payments/internal/domains/payment/gateway"
	"course-payments/internal/domains/payment/model"
	"course-payments/internal/shared"
	"course-payments/internal/shared/utils"
	"course-payments/pkg/logger"
)

// =====================================================
// INITIALIZE PAYMENT
// =====================================================

func (s *paymentService) Initialize(
	ctx context.Context,
	userID uuid.UUID,
	req model.InitializePaymentRequest,
) (*model.InitializePaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err.Error())
	}

	pc, err := s.ResolveContext(ctx, model.ResolveContextInput{
		UserID:       userID,
		EnrollmentID: req.EnrollmentID,
		CourseID:     req.CourseID,
	})
	if err != nil {
		return nil, err
	}

	return s.InitializePayment(ctx, pc)
}

// InitializePayment starts a payment for pc.
//
// Flow:
// 1. LMS pre-check (optional, fails open)
// 2. Ensure a pending enrollment exists
// 3. Free course: insert a success payment and queue enrollment completion
// 4. Paid course: create the gateway transaction, insert a pending payment,
//    queue the backup verification
func (s *paymentService) InitializePayment(ctx context.Context, pc *model.PaymentContext) (*model.InitializePaymentResponse, error) {
	if pc == nil || pc.User == nil || pc.Course == nil {
		return nil, model.NewValidationError("payment context is incomplete")
	}

	// Step 1: LMS pre-check
	if err := s.checkNotEnrolledInLMS(ctx, pc); err != nil {
		return nil, err
	}

	// Step 2: Pending enrollment. A failed one is reset to pending by CreatePending.
	if pc.Enrollment == nil || pc.Enrollment.PaymentStatus == enrollmentModel.PaymentStatusFailed {
		enrollment, err := s.enrollments.CreatePending(ctx, pc.User.ID, pc.CourseID)
		if err != nil {
			logger.ErrorWithFields("failed to create pending enrollment", err, map[string]interface{}{
				"user_id":   pc.User.ID.String(),
				"course_id": pc.CourseID.String(),
			})
			return nil, err
		}
		pc.Enrollment = enrollment
		pc.EnrollmentID = &enrollment.ID
	}

	if !pc.Course.RequiresPayment() {
		return s.initializeFree(ctx, pc)
	}
	return s.initializePaid(ctx, pc)
}

func (s *paymentService) checkNotEnrolledInLMS(ctx context.Context, pc *model.PaymentContext) error {
	if s.lms == nil || pc.Course.LMSCourseID == nil || *pc.Course.LMSCourseID == "" {
		return nil
	}

	enrolled, err := s.lms.IsEnrolled(ctx, pc.User.Email, *pc.Course.LMSCourseID)
	if err != nil {
		logger.Warn("lms enrollment check failed, continuing", map[string]interface{}{
			"user_id":   pc.User.ID.String(),
			"course_id": pc.CourseID.String(),
			"error":     err.Error(),
		})
		return nil
	}
	if enrolled {
		return model.NewConflictError("user is already enrolled in this course")
	}
	return nil
}

func (s *paymentService) baseMetadata(pc *model.PaymentContext, isFree bool) map[string]interface{} {
	meta := map[string]interface{}{
		model.MetaCourseID:    pc.CourseID.String(),
		model.MetaCourseTitle: pc.Course.Title,
		model.MetaIsFree:      isFree,
	}
	if pc.RetryOf != nil {
		meta[model.MetaRetryOf] = pc.RetryOf.String()
	}
	return meta
}

func (s *paymentService) currencyFor(pc *model.PaymentContext) string {
	if pc.Course.Currency != "" {
		return pc.Course.Currency
	}
	return s.cfg.Currency
}

// =====================================================
// FREE PATH
// =====================================================

func (s *paymentService) initializeFree(ctx context.Context, pc *model.PaymentContext) (*model.InitializePaymentResponse, error) {
	reference, err := model.NewReference(model.ReferencePrefixFree)
	if err != nil {
		return nil, err
	}

	now := s.utcNow()
	method := model.PaymentMethodFree
	payment := &model.Payment{
		ID:            uuid.New(),
		Reference:     reference,
		UserID:        pc.User.ID,
		EnrollmentID:  pc.EnrollmentID,
		Amount:        decimal.Zero,
		Currency:      s.currencyFor(pc),
		Status:        model.PaymentStatusSuccess,
		PaymentMethod: &method,
		Metadata:      s.baseMetadata(pc, true),
		PaidAt:        &now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		logger.ErrorWithFields("failed to create free payment", err, map[string]interface{}{
			"reference": reference,
		})
		return nil, err
	}

	payload := model.CompleteEnrollmentPayload{
		PaymentID:    payment.ID,
		EnrollmentID: *pc.EnrollmentID,
		Reference:    reference,
	}
	if err := s.scheduler.Enqueue(ctx, shared.TypePaymentCompleteEnroll, payload); err != nil {
		// The payment is already committed as success; finish inline instead.
		logger.Warn("failed to queue enrollment completion, completing inline", map[string]interface{}{
			"reference": reference,
			"error":     err.Error(),
		})
		if err := s.enrollments.CompleteEnrollment(ctx, *pc.EnrollmentID, payment.ID); err != nil {
			logger.ErrorWithFields("failed to complete free enrollment", err, map[string]interface{}{
				"reference": reference,
			})
		}
	}

	logger.Info("free enrollment payment created", map[string]interface{}{
		"reference":     reference,
		"user_id":       pc.User.ID.String(),
		"enrollment_id": pc.EnrollmentID.String(),
	})

	return &model.InitializePaymentResponse{
		PaymentID:    payment.ID,
		Reference:    reference,
		EnrollmentID: pc.EnrollmentID,
		IsFree:       true,
	}, nil
}

// =====================================================
// PAID PATH
// =====================================================

func (s *paymentService) initializePaid(ctx context.Context, pc *model.PaymentContext) (*model.InitializePaymentResponse, error) {
	reference, err := model.NewReference(model.ReferencePrefixPaid)
	if err != nil {
		return nil, err
	}

	currency := s.currencyFor(pc)
	gatewayMeta := map[string]interface{}{
		model.MetaCourseID:    pc.CourseID.String(),
		model.MetaCourseTitle: pc.Course.Title,
		"user_id":             pc.User.ID.String(),
		"enrollment_id":       pc.EnrollmentID.String(),
	}

	// Nothing is persisted before the gateway accepts the transaction.
	txn, err := s.gateway.CreateTransaction(ctx, gateway.CreateTransactionRequest{
		Email:       pc.User.Email,
		Amount:      pc.Course.Price,
		Currency:    currency,
		Reference:   reference,
		CallbackURL: s.cfg.CallbackURL,
		Metadata:    gatewayMeta,
	})
	if err != nil {
		logger.ErrorWithFields("gateway initialize failed", err, map[string]interface{}{
			"reference": reference,
			"user_id":   pc.User.ID.String(),
		})
		return nil, model.NewGatewayError("initialize transaction", err)
	}

	payment := &model.Payment{
		ID:               uuid.New(),
		Reference:        reference,
		UserID:           pc.User.ID,
		EnrollmentID:     pc.EnrollmentID,
		Amount:           pc.Course.Price,
		Currency:         currency,
		AccessCode:       utils.StringPtr(txn.AccessCode),
		AuthorizationURL: utils.StringPtr(txn.AuthorizationURL),
		Status:           model.PaymentStatusPending,
		Metadata:         s.baseMetadata(pc, false),
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		logger.ErrorWithFields("failed to persist pending payment", err, map[string]interface{}{
			"reference": reference,
		})
		return nil, err
	}

	s.scheduleBackupVerify(ctx, reference)

	logger.Info("payment initialized", map[string]interface{}{
		"reference":  reference,
		"payment_id": payment.ID.String(),
		"user_id":    pc.User.ID.String(),
		"amount":     payment.Amount.String(),
		"currency":   currency,
	})

	return &model.InitializePaymentResponse{
		PaymentID:        payment.ID,
		Reference:        reference,
		AuthorizationURL: payment.AuthorizationURL,
		AccessCode:       payment.AccessCode,
		EnrollmentID:     pc.EnrollmentID,
		IsFree:           false,
	}, nil
}

// scheduleBackupVerify queues a delayed verification. Failure is only logged:
// the webhook and the user poll still reconcile the payment.
func (s *paymentService) scheduleBackupVerify(ctx context.Context, reference string) {
	payload := model.VerifyPaymentPayload{Reference: reference, Trigger: model.TriggerBackup}
	err := s.scheduler.EnqueueIn(ctx, shared.TypePaymentVerify, payload, s.cfg.BackupVerifyDelay, verifyTaskID(reference))
	if err != nil {
		logger.Warn("failed to schedule backup verification", map[string]interface{}{
			"reference": reference,
			"error":     err.Error(),
		})
	}
}

func verifyTaskID(reference string) string {
	return "verify:" + reference
}
