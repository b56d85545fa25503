package service

import "github.com/Skotchmaster/pet_shop/internal/models"

var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {models.StatusProcessing, models.StatusShipping, models.StatusShipped, models.StatusCancelled},
	models.StatusProcessing: {models.StatusShipping, models.StatusShipped},
	models.StatusShipping:   {models.StatusShipped},
	models.StatusShipped:    {models.StatusCompleted, models.StatusReturned},
	models.StatusCompleted:  {models.StatusReturned},
}

// CanTransition reports whether an order may move from one status to
// another. Cancelled and returned orders are terminal.
func CanTransition(from, to models.OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func returnable(s models.OrderStatus) bool {
	return s == models.StatusCompleted || s == models.StatusShipped
}

var bookingTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending:    {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed:  {models.BookingInProgress, models.BookingCancelled},
	models.BookingInProgress: {models.BookingCompleted},
}

func CanTransitionBooking(from, to models.BookingStatus) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
