package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pet_shop/internal/broadcast"
	"github.com/Skotchmaster/pet_shop/internal/compensation"
	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/notify"
	"github.com/Skotchmaster/pet_shop/internal/repo"
	"github.com/Skotchmaster/pet_shop/internal/transport"
	"github.com/Skotchmaster/pet_shop/internal/util"
)

type BookingService struct {
	Repo          *repo.GormRepo
	Compensations *compensation.Runner
	Events        broadcast.Publisher
	Now           func() time.Time
}

func (s *BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req transport.CreateBookingRequest) (*models.ServiceOrder, error) {
	if req.ServiceID == uuid.Nil {
		return nil, fmt.Errorf("%w: service_id required", ErrValidation)
	}
	if !req.AppointmentAt.After(s.now()) {
		return nil, fmt.Errorf("%w: appointment must be in the future", ErrValidation)
	}

	svc, err := s.Repo.FindGroomingService(ctx, req.ServiceID)
	if err != nil {
		return nil, storeErr("find service", err)
	}

	total := svc.Price
	b := &models.ServiceOrder{
		UserID:        userID,
		ServiceID:     svc.ID,
		AppointmentAt: req.AppointmentAt.UTC(),
		Status:        models.BookingPending,
		Total:         &total,
		Note:          req.Note,
	}
	if err := s.Repo.CreateBooking(ctx, b); err != nil {
		return nil, storeErr("create booking", err)
	}

	s.notifyAndPublish(ctx, b, compensation.Notify(notify.ForAdmin(
		b.ID.String(),
		"New booking",
		fmt.Sprintf("%s booked for %s", svc.Name, b.AppointmentAt.Format(time.RFC3339)),
		notify.LevelInfo,
		bookingLink(b.ID),
	)))
	return b, nil
}

func (s *BookingService) ListBookings(ctx context.Context, userID uuid.UUID, page, size int) ([]models.ServiceOrder, error) {
	offset, limit := util.Calculate(page, size)
	out, err := s.Repo.ListBookings(ctx, userID, limit, offset)
	if err != nil {
		return nil, storeErr("list bookings", err)
	}
	return out, nil
}

// CancelBooking lets the owner or an admin cancel a booking that has not
// started yet.
func (s *BookingService) CancelBooking(ctx context.Context, id uuid.UUID, actor Actor) (*models.ServiceOrder, error) {
	b, err := s.Repo.GetBooking(ctx, id)
	if err != nil {
		return nil, storeErr("get booking", err)
	}
	if !actor.Admin && b.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: booking belongs to another account", ErrForbidden)
	}
	if b.Status != models.BookingPending && b.Status != models.BookingConfirmed {
		return nil, fmt.Errorf("%w: cannot cancel booking in status %s", ErrInvalidTransition, b.Status)
	}
	return s.transition(ctx, b, models.BookingCancelled)
}

// UpdateBookingStatus is the admin path; the user is told about the new
// status with the fixed per-status message.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, id uuid.UUID, status models.BookingStatus) (*models.ServiceOrder, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", ErrValidation, status)
	}
	b, err := s.Repo.GetBooking(ctx, id)
	if err != nil {
		return nil, storeErr("get booking", err)
	}
	if !CanTransitionBooking(b.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, status)
	}
	return s.transition(ctx, b, status)
}

func (s *BookingService) transition(ctx context.Context, b *models.ServiceOrder, to models.BookingStatus) (*models.ServiceOrder, error) {
	applied, err := s.Repo.TransitionBooking(ctx, b.ID, b.Status, to)
	if err != nil {
		return nil, storeErr("update booking", err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: booking left status %s", ErrInvalidTransition, b.Status)
	}
	b.Status = to

	level := notify.LevelInfo
	switch to {
	case models.BookingCompleted:
		level = notify.LevelSuccess
	case models.BookingCancelled:
		level = notify.LevelWarning
	}
	s.notifyAndPublish(ctx, b, compensation.Notify(notify.ForUser(
		b.UserID, "Booking "+string(to), to.Message(), level, bookingLink(b.ID),
	)))
	return b, nil
}

func (s *BookingService) notifyAndPublish(ctx context.Context, b *models.ServiceOrder, actions ...compensation.Action) {
	if s.Compensations != nil {
		s.Compensations.Run(ctx, b.ID, actions...)
	}
	if s.Events != nil {
		uid := b.UserID
		s.Events.Publish(broadcast.Event{
			Type:    broadcast.EventBookingUpdated,
			OrderID: b.ID,
			UserID:  &uid,
			Status:  string(b.Status),
			At:      s.now(),
		})
	}
}

func bookingLink(id uuid.UUID) string {
	return "/bookings/" + id.String()
}
