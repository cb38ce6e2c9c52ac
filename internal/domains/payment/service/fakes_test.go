package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	courseModel "course-payments/internal/domains/course/model"
	enrollmentModel "course-payments/internal/domains/enrollment/model"
	"course-payments/internal/domains/payment/model"
	userModel "course-payments/internal/domains/user/model"
)

// =====================================================
// PAYMENT REPOSITORY (in-memory)
// =====================================================

type fakePaymentRepo struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*model.Payment
	byRef map[string]uuid.UUID

	getByRefCalls  atomic.Int32
	aggregateCalls atomic.Int32
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		byID:  make(map[uuid.UUID]*model.Payment),
		byRef: make(map[string]uuid.UUID),
	}
}

func clonePayment(p *model.Payment) *model.Payment {
	cp := *p
	cp.Metadata = make(map[string]interface{}, len(p.Metadata))
	for k, v := range p.Metadata {
		cp.Metadata[k] = v
	}
	return &cp
}

func (r *fakePaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byRef[p.Reference]; exists {
		return model.ErrConflict
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt
	r.byID[p.ID] = clonePayment(p)
	r.byRef[p.Reference] = p.ID
	return nil
}

// seed stores p as is, keeping its CreatedAt.
func (r *fakePaymentRepo) seed(p *model.Payment) *model.Payment {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Metadata == nil {
		p.Metadata = map[string]interface{}{}
	}
	_ = r.Create(context.Background(), p)
	return p
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, model.ErrPaymentNotFound
	}
	return clonePayment(p), nil
}

func (r *fakePaymentRepo) GetByReference(ctx context.Context, reference string) (*model.Payment, error) {
	r.getByRefCalls.Add(1)

	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byRef[reference]
	if !ok {
		return nil, model.ErrPaymentNotFound
	}
	return clonePayment(r.byID[id]), nil
}

// transition mirrors UPDATE ... WHERE status = 'pending'.
func (r *fakePaymentRepo) transition(p *model.Payment, status string, patch map[string]interface{}) bool {
	if p.Status != model.PaymentStatusPending {
		return false
	}
	p.Status = status
	for k, v := range patch {
		p.Metadata[k] = v
	}
	p.UpdatedAt = time.Now().UTC()
	return true
}

func (r *fakePaymentRepo) MarkSuccess(ctx context.Context, reference, method string, paidAt time.Time, details map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byRef[reference]
	if !ok {
		return false, nil
	}
	p := r.byID[id]
	if !r.transition(p, model.PaymentStatusSuccess, details) {
		return false, nil
	}
	p.PaymentMethod = &method
	p.PaidAt = &paidAt
	return true, nil
}

func (r *fakePaymentRepo) MarkFailed(ctx context.Context, reference string, details map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byRef[reference]
	if !ok {
		return false, nil
	}
	return r.transition(r.byID[id], model.PaymentStatusFailed, details), nil
}

func (r *fakePaymentRepo) MarkCancelled(ctx context.Context, id uuid.UUID, audit map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return false, nil
	}
	return r.transition(p, model.PaymentStatusCancelled, audit), nil
}

func (r *fakePaymentRepo) List(ctx context.Context, filter model.PaymentFilter) ([]model.Payment, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []model.Payment
	for _, p := range r.byID {
		if filter.UserID != nil && p.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		matched = append(matched, *clonePayment(p))
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= total {
		return []model.Payment{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[filter.Offset:end], total, nil
}

func (r *fakePaymentRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []model.Payment
	for _, p := range r.byID {
		if p.Status == model.PaymentStatusPending && p.CreatedAt.Before(olderThan) {
			stale = append(stale, *clonePayment(p))
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		return stale[i].CreatedAt.Before(stale[j].CreatedAt)
	})
	if len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}

func (r *fakePaymentRepo) AggregateByStatus(ctx context.Context, start, end time.Time) ([]model.RevenueStatusBreakdown, error) {
	r.aggregateCalls.Add(1)

	r.mu.Lock()
	defer r.mu.Unlock()

	totals := map[string]*model.RevenueStatusBreakdown{}
	for _, p := range r.byID {
		if p.CreatedAt.Before(start) || p.CreatedAt.After(end) {
			continue
		}
		b, ok := totals[p.Status]
		if !ok {
			b = &model.RevenueStatusBreakdown{Status: p.Status, TotalAmount: decimal.Zero}
			totals[p.Status] = b
		}
		b.Count++
		b.TotalAmount = b.TotalAmount.Add(p.Amount)
	}

	out := make([]model.RevenueStatusBreakdown, 0, len(totals))
	for _, b := range totals {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (r *fakePaymentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// =====================================================
// ENROLLMENTS / COURSES / USERS
// =====================================================

type fakeEnrollments struct {
	mu          sync.Mutex
	enrollments map[uuid.UUID]*enrollmentModel.Enrollment

	completeCalls atomic.Int32
	failedCalls   atomic.Int32
	completeErr   error
}

func newFakeEnrollments() *fakeEnrollments {
	return &fakeEnrollments{enrollments: make(map[uuid.UUID]*enrollmentModel.Enrollment)}
}

func (f *fakeEnrollments) add(userID, courseID uuid.UUID, paymentStatus string) *enrollmentModel.Enrollment {
	f.mu.Lock()
	defer f.mu.Unlock()

	e := &enrollmentModel.Enrollment{
		ID:            uuid.New(),
		UserID:        userID,
		CourseID:      courseID,
		Status:        enrollmentModel.StatusPending,
		PaymentStatus: paymentStatus,
	}
	f.enrollments[e.ID] = e
	cp := *e
	return &cp
}

func (f *fakeEnrollments) get(id uuid.UUID) enrollmentModel.Enrollment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.enrollments[id]
}

func (f *fakeEnrollments) GetByID(ctx context.Context, id uuid.UUID) (*enrollmentModel.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.enrollments[id]
	if !ok {
		return nil, enrollmentModel.ErrEnrollmentNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEnrollments) FindByUserAndCourse(ctx context.Context, userID, courseID uuid.UUID) (*enrollmentModel.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range f.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeEnrollments) CreatePending(ctx context.Context, userID, courseID uuid.UUID) (*enrollmentModel.Enrollment, error) {
	f.mu.Lock()
	for _, e := range f.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			if e.PaymentStatus == enrollmentModel.PaymentStatusFailed {
				e.PaymentStatus = enrollmentModel.PaymentStatusPending
			}
			cp := *e
			f.mu.Unlock()
			return &cp, nil
		}
	}
	f.mu.Unlock()
	return f.add(userID, courseID, enrollmentModel.PaymentStatusPending), nil
}

func (f *fakeEnrollments) CompleteEnrollment(ctx context.Context, enrollmentID, paymentID uuid.UUID) error {
	f.completeCalls.Add(1)
	if f.completeErr != nil {
		return f.completeErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if e, ok := f.enrollments[enrollmentID]; ok {
		e.Status = enrollmentModel.StatusActive
		e.PaymentStatus = enrollmentModel.PaymentStatusCompleted
		e.PaymentID = &paymentID
	}
	return nil
}

func (f *fakeEnrollments) MarkFailed(ctx context.Context, enrollmentID uuid.UUID) error {
	f.failedCalls.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()

	if e, ok := f.enrollments[enrollmentID]; ok && e.PaymentStatus == enrollmentModel.PaymentStatusPending {
		e.PaymentStatus = enrollmentModel.PaymentStatusFailed
	}
	return nil
}

type fakeCourses map[uuid.UUID]*courseModel.Course

func (f fakeCourses) GetByID(ctx context.Context, id uuid.UUID) (*courseModel.Course, error) {
	c, ok := f[id]
	if !ok {
		return nil, courseModel.ErrCourseNotFound
	}
	return c, nil
}

type fakeUsers map[uuid.UUID]*userModel.User

func (f fakeUsers) FindByID(ctx context.Context, id uuid.UUID) (*userModel.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, userModel.ErrUserNotFound
	}
	return u, nil
}

type fakeLMS struct {
	enrolled bool
	err      error
	calls    int
}

func (f *fakeLMS) IsEnrolled(ctx context.Context, email, lmsCourseID string) (bool, error) {
	f.calls++
	return f.enrolled, f.err
}

// =====================================================
// SCHEDULER / NOTIFIER (testify mocks)
// =====================================================

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) Enqueue(ctx context.Context, taskType string, payload interface{}) error {
	args := m.Called(ctx, taskType, payload)
	return args.Error(0)
}

func (m *mockScheduler) EnqueueIn(ctx context.Context, taskType string, payload interface{}, delay time.Duration, taskID string) error {
	args := m.Called(ctx, taskType, payload, delay, taskID)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendReceipt(ctx context.Context, data model.ReceiptData) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *mockNotifier) NotifySuccess(ctx context.Context, event model.PaymentSuccessEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// =====================================================
// CACHE (in-memory, records TTLs)
// =====================================================

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (c *memCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		delete(c.ttls, k)
	}
	return nil
}

func (c *memCache) Ping(ctx context.Context) error { return nil }

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func (c *memCache) ttl(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}
