// Package form renders HTML forms from an ordered field list.
//
// Every field names a FieldType from a registry (input, textarea, radio,
// submit, reset by default). A State carries what changes between requests:
// input values, touched fields, per-field messages and the enabled actions.
//
// RegisterForm is the attendee registration form built on top of it.
package form
