// Package http provides the JSON handlers and middleware of the room booking API.
//
// The router exposes the following endpoints:
//   - POST /api/auth/register/send-code, POST /api/auth/register/complete: two step
//     registration exchanging the `registrationRequest` payload. Both are public.
//   - POST /api/auth/login: returns {"token","user"} and sets the `session_token`
//     cookie. POST /api/auth/logout clears the cookie. GET /api/auth/me returns the
//     signed-in user.
//   - GET /api/bookings?roomId&date, POST /api/bookings, DELETE /api/bookings/{id}:
//     day grid and booking management for any authenticated user.
//   - GET /api/admin/bookings: every booking, upcoming first, for administrators.
//   - GET /api/calendar?date: slots, duration options and selectable days.
//   - GET /api/rooms, POST /api/rooms, PATCH /api/rooms/{id}, DELETE /api/rooms/{id}:
//     room catalog. Listing is open to any user while mutations require admin.
//   - GET /api/settings, PATCH /api/settings: scheduling policy.
//   - GET /api/users, DELETE /api/users/{id}: administrator user management.
//   - GET /api/kiosk, GET /api/kiosk/rooms, GET /api/kiosk/calendar.ics: public
//     wall display endpoints.
//   - GET /health: liveness probe.
//
// Errors are written as {"error": message} with optional "code" and "fields".
// Request/response DTOs live alongside their respective handlers.
package http
