package handler

import (
	"github.com/adwaidhmp/backend/internal/repo"
	"github.com/adwaidhmp/backend/internal/worker"
	"github.com/adwaidhmp/backend/lib/rabbit"
)

var (
	plans      *repo.PlanStore
	profiles   *repo.ProfileStore
	bookings   *repo.BookingStore
	devices    *repo.DeviceTokenStore
	dispatcher *rabbit.Dispatcher
	jobs       *worker.Queue
)

// Setup wires the stores and runtimes the handlers use. Called once from
// main before the router starts.
func Setup(planStore *repo.PlanStore, profileStore *repo.ProfileStore, bookingStore *repo.BookingStore, deviceStore *repo.DeviceTokenStore, d *rabbit.Dispatcher, q *worker.Queue) {
	plans = planStore
	profiles = profileStore
	bookings = bookingStore
	devices = deviceStore
	dispatcher = d
	jobs = q
}
