// Package repository implements raw-SQL data access for users, refresh
// tokens and appointments.  This file defines sentinel error values reused
// across repositories so handlers can map failures to HTTP responses
// without inspecting SQL errors.
package repository

import "errors"

// ErrEmailExists is returned when registration hits the unique email
// constraint.  Handlers should translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrUserHasBookings is returned when an admin tries to delete a user who
// still holds SCHEDULED appointments.  The appointments must be cancelled
// first so no paid booking is orphaned.  Handlers should translate this
// into an HTTP 409 response.
var ErrUserHasBookings = errors.New("user still has scheduled appointments")
