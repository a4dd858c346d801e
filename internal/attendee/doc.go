// Package attendee keeps the people who answered the event invitation.
//
// A Store looks attendees up by name, case-insensitively, and saves new
// answers. MemoryStore is the process-local default and starts with two
// example records; AdapterStore keeps the same records in any
// database.Adapter. Registry hands out one named Store per id.
package attendee
