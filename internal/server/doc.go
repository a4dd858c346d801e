// Package server is the HTTP face of the registration service.
//
// Routes:
//
//	GET  /health                         liveness probe, text "OK"
//	GET  /attendee                       all attendees
//	GET  /attendee/{firstname}/{lastname} one attendee by name
//	PUT  /attendee                       register or update an attendee
//	GET  /                               registration page
//	POST /register                       registration form submission
//	GET  /logo.svg, /logo.png            the dot-matrix logo
//	GET  /logo/live                      websocket, one SVG frame per animation step
//
// Every request is logged through log/slog once it completes.
package server
