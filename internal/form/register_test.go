package form

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cts/internal/attendee"
)

type failingStore struct {
	attendee.Store
}

func (failingStore) Get(ctx context.Context, firstname, lastname string) (*attendee.Attendee, error) {
	return nil, errors.New("backend down")
}

func newRegisterForm(t *testing.T) *RegisterForm {
	t.Helper()
	f, err := NewRegisterForm("/register")
	require.NoError(t, err)
	return f
}

func TestRegisterForm_Validate(t *testing.T) {
	ctx := context.Background()
	f := newRegisterForm(t)

	tests := []struct {
		name     string
		in       Input
		store    attendee.Store
		actions  []string
		messages map[string]string
	}{
		{
			name:    "everything missing",
			in:      Input{Firstname: " ", Lastname: ""},
			store:   attendee.NewMemoryStore(),
			actions: []string{"reset"},
			messages: map[string]string{
				"firstname": MsgMissingFirstname,
				"lastname":  MsgMissingLastname,
				"attending": MsgMissingAttending,
			},
		},
		{
			name:     "no backend",
			in:       Input{Firstname: "Ada", Lastname: "Lovelace", Attending: "yes"},
			actions:  []string{"reset"},
			messages: map[string]string{},
		},
		{
			name:     "new attendee",
			in:       Input{Firstname: "Ada", Lastname: "Lovelace", Attending: "yes"},
			store:    attendee.NewMemoryStore(),
			actions:  []string{"submit", "reset"},
			messages: map[string]string{},
		},
		{
			name:     "same answer again",
			in:       Input{Firstname: "alexander ", Lastname: "urban", Attending: "YES"},
			store:    attendee.NewMemoryStore(),
			actions:  []string{"reset"},
			messages: map[string]string{"submit": MsgAlreadySaved},
		},
		{
			name:     "changed answer",
			in:       Input{Firstname: "Johnny", Lastname: "Puma", Attending: "maybe"},
			store:    attendee.NewMemoryStore(),
			actions:  []string{"update", "reset"},
			messages: map[string]string{},
		},
		{
			name:     "lookup fails",
			in:       Input{Firstname: "Ada", Lastname: "Lovelace", Attending: "yes"},
			store:    failingStore{},
			actions:  []string{"reset"},
			messages: map[string]string{"submit": "backend down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.Validate(ctx, tt.in, tt.store)
			assert.Equal(t, tt.actions, res.Actions)
			assert.Equal(t, tt.messages, res.Messages)
		})
	}
}

func TestRegisterForm_SubmitNew(t *testing.T) {
	ctx := context.Background()
	f := newRegisterForm(t)
	store := attendee.NewMemoryStore()

	msg, res, err := f.Submit(ctx, Input{Firstname: "Ada", Lastname: "Lovelace", Attending: "yes"}, "submit", store)
	require.NoError(t, err)
	assert.Equal(t, "Thank you, Ada! You data was stored on the server.", msg)
	assert.True(t, res.Allows("submit"))

	a, err := store.Get(ctx, "Ada", "Lovelace")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 3, a.ID)
}

func TestRegisterForm_SubmitUpdate(t *testing.T) {
	ctx := context.Background()
	f := newRegisterForm(t)
	store := attendee.NewMemoryStore()

	msg, _, err := f.Submit(ctx, Input{Firstname: "Johnny", Lastname: "Puma", Attending: "yes"}, "update", store)
	require.NoError(t, err)
	assert.Equal(t, "Thank you, Johnny! You data was updated on the server.", msg)

	a, err := store.Get(ctx, "Johnny", "Puma")
	require.NoError(t, err)
	assert.Equal(t, "yes", a.Attending)
}

func TestRegisterForm_SubmitRejected(t *testing.T) {
	ctx := context.Background()
	f := newRegisterForm(t)
	store := attendee.NewMemoryStore()

	tests := []struct {
		name   string
		in     Input
		action string
	}{
		{name: "incomplete", in: Input{Firstname: "Ada"}, action: "submit"},
		{name: "wrong action", in: Input{Firstname: "Johnny", Lastname: "Puma", Attending: "yes"}, action: "submit"},
		{name: "reset", in: Input{Firstname: "Ada", Lastname: "Lovelace", Attending: "yes"}, action: "reset"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, _, err := f.Submit(ctx, tt.in, tt.action, store)
			require.NoError(t, err)
			assert.Empty(t, msg)
		})
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2, "nothing saved")
}

func TestRegisterForm_State(t *testing.T) {
	ctx := context.Background()
	f := newRegisterForm(t)

	in := Input{Firstname: "", Lastname: "Puma", Attending: "no"}
	res := f.Validate(ctx, in, attendee.NewMemoryStore())
	st := f.State(in, res, true)

	assert.Equal(t, map[string]bool{"firstname": true, "lastname": true, "attending": true}, st.Touched)
	assert.Equal(t, "Puma", st.Values["lastname"])

	var sb strings.Builder
	require.NoError(t, f.Render(&sb, st))
	out := sb.String()
	assert.Contains(t, out, MsgMissingFirstname)
	assert.Contains(t, out, `<input type="radio" name="attending" value="no" checked> No`)
	assert.Contains(t, out, `id="register-firstname"`)
	assert.Contains(t, out, `name="submit" value="Submit" disabled>`)
}

func TestInputFromValues(t *testing.T) {
	values := map[string]string{"firstname": "Ada", "lastname": "L", "attending": "maybe"}
	in := InputFromValues(func(k string) string { return values[k] })
	assert.Equal(t, Input{Firstname: "Ada", Lastname: "L", Attending: "maybe"}, in)
	assert.Equal(t, values, in.Values())
}

func TestSuccessMessage(t *testing.T) {
	assert.Equal(t, "Thank you, Bo! You data was stored on the server.", SuccessMessage("Bo", "submit"))
	assert.Equal(t, "Thank you, Bo! You data was updated on the server.", SuccessMessage("Bo", "update"))
}
