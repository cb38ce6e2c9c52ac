package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-payments/internal/domains/payment/model"
)

func TestGetPaymentStatus_CachesPendingShortly(t *testing.T) {
	f := newFixture(t)
	p := f.seedPending(fixedNow)

	view, err := f.svc.GetPaymentStatus(context.Background(), f.user.ID, p.Reference)

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, view.Status)
	assert.Equal(t, f.paidCourse.Title, view.CourseTitle)
	require.NotNil(t, view.CourseID)
	assert.Equal(t, f.paidCourse.ID, *view.CourseID)
	assert.Equal(t, 60*time.Second, f.cache.ttl(statusKey(p.Reference)))
}

func TestGetPaymentStatus_ServesFromCache(t *testing.T) {
	f := newFixture(t)
	p := f.seedPending(fixedNow)

	_, err := f.svc.GetPaymentStatus(context.Background(), f.user.ID, p.Reference)
	require.NoError(t, err)
	reads := f.payments.getByRefCalls.Load()

	view, err := f.svc.GetPaymentStatus(context.Background(), f.user.ID, p.Reference)

	require.NoError(t, err)
	assert.Equal(t, p.Reference, view.Reference)
	assert.Equal(t, reads, f.payments.getByRefCalls.Load())
}

func TestGetPaymentStatus_TerminalCachedLongerAfterVerify(t *testing.T) {
	f := newFixture(t)
	f.allowScheduling()
	f.allowNotifications()
	res := f.initPaid(t)

	_, err := f.svc.GetPaymentStatus(context.Background(), f.user.ID, res.Reference)
	require.NoError(t, err)

	_, err = f.svc.VerifyPayment(context.Background(), res.Reference)
	require.NoError(t, err)
	// The committed transition drops the stale pending view.
	assert.False(t, f.cache.has(statusKey(res.Reference)))

	view, err := f.svc.GetPaymentStatus(context.Background(), f.user.ID, res.Reference)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusSuccess, view.Status)
	assert.NotNil(t, view.PaidAt)
	assert.Equal(t, time.Hour, f.cache.ttl(statusKey(res.Reference)))
}

func TestGetPaymentStatus_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetPaymentStatus(context.Background(), f.user.ID, "")
	requireCode(t, err, model.ErrCodeValidation)

	_, err = f.svc.GetPaymentStatus(context.Background(), f.user.ID, "ref_missing")
	requireCode(t, err, model.ErrCodeNotFound)
}

func TestGetPaymentStatus_HidesOtherUsersPayments(t *testing.T) {
	f := newFixture(t)
	p := f.seedPending(fixedNow)
	stranger := uuid.New()

	// Cold cache, then warm cache: neither may leak the view.
	_, err := f.svc.GetPaymentStatus(context.Background(), stranger, p.Reference)
	requireCode(t, err, model.ErrCodeNotFound)

	view, err := f.svc.GetPaymentStatus(context.Background(), f.user.ID, p.Reference)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, view.UserID)

	_, err = f.svc.GetPaymentStatus(context.Background(), stranger, p.Reference)
	requireCode(t, err, model.ErrCodeNotFound)
}

type brokenCache struct{ memCache }

func (*brokenCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, errors.New("connection reset")
}

func (*brokenCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("connection reset")
}

func TestStatusCache_FailuresBehaveLikeMiss(t *testing.T) {
	c := NewStatusCache(&brokenCache{}, time.Minute, time.Hour)

	view, ok := c.Get(context.Background(), "ref_x")
	assert.Nil(t, view)
	assert.False(t, ok)

	c.Set(context.Background(), &model.PaymentStatusView{Reference: "ref_x", Status: model.PaymentStatusPending})
}

func TestStatusCache_NilIsSafe(t *testing.T) {
	var c *StatusCache

	_, ok := c.Get(context.Background(), "ref_x")
	assert.False(t, ok)
	c.Set(context.Background(), &model.PaymentStatusView{Reference: "ref_x"})
	c.Invalidate(context.Background(), "ref_x")

	withoutBackend := NewStatusCache(nil, time.Minute, time.Hour)
	_, ok = withoutBackend.Get(context.Background(), "ref_x")
	assert.False(t, ok)
}
