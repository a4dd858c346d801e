package form

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"slices"
)

// Option is one radio alternative.
type Option struct {
	Value string
	Label string
}

// Field describes one form field.
type Field struct {
	Name        string
	Type        string
	Label       string
	Placeholder string
	Focus       bool

	// Options are the radio alternatives in display order.
	Options []Option

	// Rows and Cols size a textarea. Zero leaves the browser default.
	Rows int
	Cols int
}

// State is the per-request part of a form.
type State struct {
	Values   map[string]string
	Touched  map[string]bool
	Messages map[string]string
	Actions  []string

	// Alert is a success message shown above the fields.
	Alert string

	// Disabled, when set, explains why the form can't be used right now.
	Disabled string
}

// NewState returns the state of an untouched form: only "submit" enabled.
func NewState() State {
	return State{
		Values:   map[string]string{},
		Touched:  map[string]bool{},
		Messages: map[string]string{},
		Actions:  []string{"submit"},
	}
}

// Form is an ordered set of fields.
type Form struct {
	class  string
	action string
	fields []Field
}

// New creates a form. Every field needs a unique name and a registered type;
// an empty type means input. class prefixes field ids and defaults to "form".
func New(class, action string, fields []Field) (*Form, error) {
	if class == "" {
		class = "form"
	}
	seen := make(map[string]bool, len(fields))
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.New("field without name")
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		if f.Type == "" {
			f.Type = TypeInput
		}
		if _, err := Lookup(f.Type); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out = append(out, f)
	}
	return &Form{class: class, action: action, fields: out}, nil
}

// Class returns the form's CSS class.
func (f *Form) Class() string {
	return f.class
}

// Fields returns a copy of the field list.
func (f *Form) Fields() []Field {
	return slices.Clone(f.fields)
}

// Field returns the field called name.
func (f *Form) Field(name string) (Field, bool) {
	for _, fd := range f.fields {
		if fd.Name == name {
			return fd, true
		}
	}
	return Field{}, false
}

type rowView struct {
	Type    string
	ID      string
	Label   string
	Field   template.HTML
	Message string
}

type formView struct {
	Class    string
	Action   string
	Alert    string
	Disabled string
	Rows     []rowView
	Submit   template.HTML
	Reset    template.HTML
	Message  string
}

// Render writes the form's HTML for st.
//
// Buttons are not rendered as rows: the final row holds one submit and one
// reset button, preferring the first enabled field of each type.
func (f *Form) Render(w io.Writer, st State) error {
	view := formView{
		Class:    f.class,
		Action:   f.action,
		Alert:    st.Alert,
		Disabled: st.Disabled,
		Message:  st.Messages["submit"],
	}

	for _, fd := range f.fields {
		if isButton(fd.Type) {
			continue
		}
		html, err := f.renderField(fd, st)
		if err != nil {
			return err
		}
		row := rowView{Type: fd.Type, ID: f.id(fd), Label: fd.Label, Field: html}
		if st.Touched[fd.Name] {
			row.Message = st.Messages[fd.Name]
		}
		view.Rows = append(view.Rows, row)
	}

	var err error
	if view.Submit, err = f.renderButton(TypeSubmit, st); err != nil {
		return err
	}
	if view.Reset, err = f.renderButton(TypeReset, st); err != nil {
		return err
	}

	if err := templates.ExecuteTemplate(w, "form", view); err != nil {
		return fmt.Errorf("render form: %w", err)
	}
	return nil
}

func isButton(typ string) bool {
	return typ == TypeSubmit || typ == TypeReset
}

func (f *Form) id(fd Field) string {
	return f.class + "-" + fd.Name
}

func (f *Form) renderField(fd Field, st State) (template.HTML, error) {
	ft, err := Lookup(fd.Type)
	if err != nil {
		return "", err
	}
	v := FieldView{
		Field:    fd,
		ID:       f.id(fd),
		Value:    st.Values[fd.Name],
		Disabled: st.Disabled != "",
	}
	if st.Touched[fd.Name] {
		v.State = "valid"
		if st.Messages[fd.Name] != "" {
			v.State = "invalid"
		}
	}
	for _, o := range fd.Options {
		v.Options = append(v.Options, OptionView{Option: o, Checked: st.Values[fd.Name] == o.Value})
	}
	return ft.Render(v)
}

// renderButton picks the first enabled field of typ, else the first of typ.
// A form without submit field still gets a default submit button.
func (f *Form) renderButton(typ string, st State) (template.HTML, error) {
	var first, active *Field
	for i := range f.fields {
		fd := &f.fields[i]
		if fd.Type != typ {
			continue
		}
		if first == nil {
			first = fd
		}
		if active == nil && slices.Contains(st.Actions, fd.Name) {
			active = fd
		}
	}

	var fd Field
	switch {
	case active != nil:
		fd = *active
	case first != nil:
		fd = *first
	case typ == TypeSubmit:
		fd = Field{Name: "submit", Type: TypeSubmit, Label: "Submit"}
	default:
		return "", nil
	}

	ft, err := Lookup(fd.Type)
	if err != nil {
		return "", err
	}
	return ft.Render(FieldView{
		Field:    fd,
		ID:       f.id(fd),
		Disabled: st.Disabled != "" || !slices.Contains(st.Actions, fd.Name),
	})
}
