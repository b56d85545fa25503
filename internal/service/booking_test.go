package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pet_shop/internal/broadcast"
	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/transport"
)

func (e *testEnv) seedGrooming(t *testing.T, price float64) uuid.UUID {
	t.Helper()
	g := models.GroomingService{Name: "bath and trim", Price: price}
	require.NoError(t, e.repo.DB.Create(&g).Error)
	return g.ID
}

func bookingRequest(serviceID uuid.UUID) transport.CreateBookingRequest {
	return transport.CreateBookingRequest{ServiceID: serviceID, AppointmentAt: fixedNow.Add(48 * time.Hour)}
}

func (e *testEnv) completedBooking(t *testing.T, user, serviceID uuid.UUID) *models.ServiceOrder {
	t.Helper()
	ctx := context.Background()
	b, err := e.bookings.CreateBooking(ctx, user, bookingRequest(serviceID))
	require.NoError(t, err)
	for _, s := range []models.BookingStatus{models.BookingConfirmed, models.BookingInProgress, models.BookingCompleted} {
		b, err = e.bookings.UpdateBookingStatus(ctx, b.ID, s)
		require.NoError(t, err)
	}
	return b
}

func TestCreateBooking(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	svc := env.seedGrooming(t, 45)
	user := uuid.New()

	b, err := env.bookings.CreateBooking(ctx, user, bookingRequest(svc))
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)
	require.NotNil(t, b.Total)
	assert.InDelta(t, 45, *b.Total, 1e-9)

	past := bookingRequest(svc)
	past.AppointmentAt = fixedNow.Add(-time.Hour)
	_, err = env.bookings.CreateBooking(ctx, user, past)
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.bookings.CreateBooking(ctx, user, bookingRequest(uuid.New()))
	require.ErrorIs(t, err, ErrNotFound)

	list, err := env.bookings.ListBookings(ctx, user, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	admin := env.notifications(t, models.AudienceAdmin)
	require.Len(t, admin, 1)
	assert.Equal(t, "New booking", admin[0].Title)
}

func TestUpdateBookingStatus_SendsStatusMessage(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	svc := env.seedGrooming(t, 20)
	user := uuid.New()

	b, err := env.bookings.CreateBooking(ctx, user, bookingRequest(svc))
	require.NoError(t, err)

	sub := env.hub.Subscribe()
	defer sub.Close()

	_, err = env.bookings.UpdateBookingStatus(ctx, b.ID, models.BookingCompleted)
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.bookings.UpdateBookingStatus(ctx, b.ID, "Lost")
	require.ErrorIs(t, err, ErrValidation)

	got, err := env.bookings.UpdateBookingStatus(ctx, b.ID, models.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)

	ev := recvEvent(t, sub)
	assert.Equal(t, broadcast.EventBookingUpdated, ev.Type)
	assert.Equal(t, string(models.BookingConfirmed), ev.Status)

	notes := env.notifications(t, models.AudienceUser)
	require.Len(t, notes, 1)
	assert.Equal(t, user.String(), notes[0].SubjectID)
	assert.Equal(t, "Confirmed; please be ready.", notes[0].Message)
}

func TestBookingStatusMessages(t *testing.T) {
	want := map[models.BookingStatus]string{
		models.BookingPending:    "Awaiting confirmation.",
		models.BookingConfirmed:  "Confirmed; please be ready.",
		models.BookingInProgress: "Service is underway.",
		models.BookingCompleted:  "Service completed. Thank you.",
		models.BookingCancelled:  "Appointment cancelled.",
	}
	for status, msg := range want {
		assert.True(t, status.Valid())
		assert.Equal(t, msg, status.Message())
	}
	assert.False(t, models.BookingStatus("pending").Valid())
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	svc := env.seedGrooming(t, 20)
	user := uuid.New()

	b, err := env.bookings.CreateBooking(ctx, user, bookingRequest(svc))
	require.NoError(t, err)

	_, err = env.bookings.CancelBooking(ctx, b.ID, Actor{UserID: uuid.New()})
	require.ErrorIs(t, err, ErrForbidden)

	got, err := env.bookings.CancelBooking(ctx, b.ID, Actor{UserID: user})
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)

	_, err = env.bookings.CancelBooking(ctx, b.ID, Actor{UserID: user})
	require.ErrorIs(t, err, ErrInvalidTransition)

	started := env.completedBooking(t, user, svc)
	_, err = env.bookings.CancelBooking(ctx, started.ID, Actor{UserID: uuid.New(), Admin: true})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCanTransitionBooking(t *testing.T) {
	assert.True(t, CanTransitionBooking(models.BookingPending, models.BookingConfirmed))
	assert.True(t, CanTransitionBooking(models.BookingConfirmed, models.BookingCancelled))
	assert.True(t, CanTransitionBooking(models.BookingInProgress, models.BookingCompleted))
	assert.False(t, CanTransitionBooking(models.BookingInProgress, models.BookingCancelled))
	assert.False(t, CanTransitionBooking(models.BookingCompleted, models.BookingPending))
}
