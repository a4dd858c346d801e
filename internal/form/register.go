package form

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/cts/internal/attendee"
)

// Messages shown by the registration form.
const (
	MsgMissingFirstname = "Missing input: Firstname"
	MsgMissingLastname  = "Missing input: Lastname"
	MsgMissingAttending = "Choose one of the alternatives"
	MsgAlreadySaved     = "You answer was already saved, before."
	MsgUnavailable      = "Can't process your input, right now: No connection to database server"
)

// Input is the submitted registration data.
type Input struct {
	Firstname string
	Lastname  string
	Attending string
}

// InputFromValues reads Input from form values.
func InputFromValues(get func(key string) string) Input {
	return Input{
		Firstname: get("firstname"),
		Lastname:  get("lastname"),
		Attending: get("attending"),
	}
}

// Values returns in as form values.
func (in Input) Values() map[string]string {
	return map[string]string{
		"firstname": in.Firstname,
		"lastname":  in.Lastname,
		"attending": in.Attending,
	}
}

// Result tells which actions are allowed and what to show per field.
type Result struct {
	Actions  []string
	Messages map[string]string
}

// Allows reports whether action is enabled.
func (r Result) Allows(action string) bool {
	return slices.Contains(r.Actions, action)
}

// RegisterForm is the attendee registration form.
type RegisterForm struct {
	*Form
}

// RegisterFields returns the registration form's fields.
func RegisterFields() []Field {
	return []Field{
		{Name: "firstname", Type: TypeInput, Label: "Firstname:", Placeholder: "Type in your firstname.", Focus: true},
		{Name: "lastname", Type: TypeInput, Label: "Lastname:", Placeholder: "Type in your lastname."},
		{Name: "attending", Type: TypeRadio, Label: "Are you going to attend the conference?", Options: []Option{
			{Value: attendee.Yes, Label: "Yes"},
			{Value: attendee.No, Label: "No"},
			{Value: attendee.Maybe, Label: "Maybe"},
		}},
		{Name: "submit", Type: TypeSubmit, Label: "Submit"},
		{Name: "update", Type: TypeSubmit, Label: "Update"},
		{Name: "reset", Type: TypeReset, Label: "Reset"},
	}
}

// NewRegisterForm creates the registration form posting to action.
func NewRegisterForm(action string) (*RegisterForm, error) {
	f, err := New("register", action, RegisterFields())
	if err != nil {
		return nil, err
	}
	return &RegisterForm{Form: f}, nil
}

// Validate checks in and, if it is complete, looks the name up in store.
// A nil store means the backend is unavailable.
func (r *RegisterForm) Validate(ctx context.Context, in Input, store attendee.Store) Result {
	messages := map[string]string{}
	if strings.TrimSpace(in.Firstname) == "" {
		messages["firstname"] = MsgMissingFirstname
	}
	if strings.TrimSpace(in.Lastname) == "" {
		messages["lastname"] = MsgMissingLastname
	}
	if in.Attending == "" {
		messages["attending"] = MsgMissingAttending
	}
	if len(messages) > 0 {
		return Result{Actions: []string{"reset"}, Messages: messages}
	}

	if store == nil {
		return Result{Actions: []string{"reset"}, Messages: messages}
	}

	a, err := store.Get(ctx, strings.TrimSpace(in.Firstname), strings.TrimSpace(in.Lastname))
	switch {
	case err != nil:
		messages["submit"] = err.Error()
		return Result{Actions: []string{"reset"}, Messages: messages}
	case a == nil:
		return Result{Actions: []string{"submit", "reset"}, Messages: messages}
	case strings.EqualFold(a.Attending, in.Attending):
		messages["submit"] = MsgAlreadySaved
		return Result{Actions: []string{"reset"}, Messages: messages}
	default:
		return Result{Actions: []string{"update", "reset"}, Messages: messages}
	}
}

// Submit validates in and saves it when action is enabled. It returns the
// success message, or "" together with the validation result when nothing
// was saved.
func (r *RegisterForm) Submit(ctx context.Context, in Input, action string, store attendee.Store) (string, Result, error) {
	res := r.Validate(ctx, in, store)
	if store == nil || action == "reset" || !res.Allows(action) {
		return "", res, nil
	}

	_, err := store.Save(ctx, attendee.Attendee{
		Firstname: strings.TrimSpace(in.Firstname),
		Lastname:  strings.TrimSpace(in.Lastname),
		Attending: in.Attending,
	}, attendee.ConflictOverwrite)
	if err != nil {
		return "", res, fmt.Errorf("save registration: %w", err)
	}
	return SuccessMessage(in.Firstname, action), res, nil
}

// SuccessMessage is shown after a registration was saved.
func SuccessMessage(firstname, action string) string {
	verb := "stored"
	if action == "update" {
		verb = "updated"
	}
	return fmt.Sprintf("Thank you, %s! You data was %s on the server.", firstname, verb)
}

// State builds the form state for in after validation. touched marks the
// fields whose messages are shown.
func (r *RegisterForm) State(in Input, res Result, touched bool) State {
	st := NewState()
	st.Values = in.Values()
	st.Actions = slices.Clone(res.Actions)
	for k, v := range res.Messages {
		st.Messages[k] = v
	}
	if touched {
		for _, fd := range r.fields {
			if !isButton(fd.Type) {
				st.Touched[fd.Name] = true
			}
		}
	}
	return st
}
