package form

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ErrUnknownFieldType is returned for fields whose type is not registered.
var ErrUnknownFieldType = errors.New("unsupported field type")

// Built-in field types.
const (
	TypeInput    = "input"
	TypeTextarea = "textarea"
	TypeRadio    = "radio"
	TypeSubmit   = "submit"
	TypeReset    = "reset"
)

// FieldType renders one kind of form field.
type FieldType interface {
	Render(v FieldView) (template.HTML, error)
}

// FieldTypeFunc adapts a function to FieldType.
type FieldTypeFunc func(v FieldView) (template.HTML, error)

// Render implements FieldType.
func (f FieldTypeFunc) Render(v FieldView) (template.HTML, error) {
	return f(v)
}

// FieldView is what a FieldType sees: the field plus its current state.
type FieldView struct {
	Field

	ID    string
	Value string

	// State is "valid" or "invalid" once the field was touched, else "".
	State string

	// Disabled is set on buttons whose action is not enabled.
	Disabled bool

	Options []OptionView
}

// OptionView is a radio option with its checked state.
type OptionView struct {
	Option
	Checked bool
}

// templateType renders the named template from templates/fields.html.
type templateType string

func (t templateType) Render(v FieldView) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(t), v); err != nil {
		return "", fmt.Errorf("render %s field %q: %w", string(t), v.Name, err)
	}
	return template.HTML(buf.String()), nil
}

var (
	registryMu sync.RWMutex
	registry   = map[string]FieldType{
		TypeInput:    templateType(TypeInput),
		TypeTextarea: templateType(TypeTextarea),
		TypeRadio:    templateType(TypeRadio),
		TypeSubmit:   templateType(TypeSubmit),
		TypeReset:    templateType(TypeReset),
	}
)

// Register adds or replaces the field type called name.
func Register(name string, ft FieldType) error {
	if name == "" {
		return errors.New("field type name must not be empty")
	}
	if ft == nil {
		return fmt.Errorf("field type %q: nil renderer", name)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = ft
	return nil
}

// Lookup returns the field type called name.
func Lookup(name string) (FieldType, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ft, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFieldType, name)
	}
	return ft, nil
}

// Types lists the registered type names, sorted.
func Types() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
