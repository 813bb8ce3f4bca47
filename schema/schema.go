// Package schema builds formz forms from YAML definitions.
//
//	strategy: after_submit
//	fields:
//	  - key: email
//	    rules: required,email
//	    messages:
//	      required: email is required
//	      email: not an email
//	  - key: age
//	    type: int
//	    initial: 18
//	    rules: min=21,max=100
//	  - key: confirm
//	    equals: password
//
// Rules are go-playground validator tags, one validator per comma-separated
// tag, run in the order written. As in validator struct tags, a comma inside
// a parameter is written 0x2C (excludesall=0x2C) and a pipe 0x7C.
package schema

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zoobzio/formz"
	"github.com/zoobzio/formz/rules"
	"gopkg.in/yaml.v3"
)

// Field types.
const (
	TypeString = "string"
	TypeInt    = "int"
	TypeBool   = "bool"
)

var (
	// ErrInvalidDefinition is returned for definitions that cannot be built.
	ErrInvalidDefinition = errors.New("invalid form definition")
)

// Definition describes a form.
type Definition struct {
	Strategy *formz.ValidationStrategy `yaml:"strategy"`
	Fields   []FieldDefinition         `yaml:"fields"`
}

// FieldDefinition describes one field.
type FieldDefinition struct {
	Key      string                    `yaml:"key"`
	Type     string                    `yaml:"type"`
	Initial  yaml.Node                 `yaml:"initial"`
	Rules    string                    `yaml:"rules"`
	Messages map[string]string         `yaml:"messages"`
	Equals   string                    `yaml:"equals"`
	Triggers []string                  `yaml:"triggers"`
	Disabled bool                      `yaml:"disabled"`
	Strategy *formz.ValidationStrategy `yaml:"strategy"`
}

// Fields maps keys to the fields a Definition produced.
type Fields map[string]formz.FormField[string]

// Parse decodes a YAML definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse form definition: %w", err)
	}
	return &def, nil
}

// LoadFile reads and decodes a YAML definition from path.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read form definition %s: %w", path, err)
	}
	return Parse(data)
}

// Builder creates a formz Builder holding the defined fields, in order.
// Callbacks and further options are set on the returned builder.
func (d *Definition) Builder() (*formz.Builder[string], Fields, error) {
	b := formz.NewBuilder[string]()
	if d.Strategy != nil {
		b.Strategy(*d.Strategy)
	}

	fields := make(Fields, len(d.Fields))
	for i := range d.Fields {
		fd := &d.Fields[i]
		if fd.Key == "" {
			return nil, nil, fmt.Errorf("%w: field %d has no key", ErrInvalidDefinition, i)
		}
		field, err := fd.build(fields)
		if err != nil {
			return nil, nil, fmt.Errorf("field %s: %w", fd.Key, err)
		}
		fields[fd.Key] = field
		b.Add(field)
	}
	return b, fields, nil
}

// Lookup returns the field for key with value type V.
func Lookup[V any](fields Fields, key string) (*formz.Field[string, V], bool) {
	fl, ok := fields[key].(*formz.Field[string, V])
	return fl, ok
}

func (fd *FieldDefinition) build(fields Fields) (formz.FormField[string], error) {
	switch fd.Type {
	case "", TypeString:
		return buildField[string](fd, fields)
	case TypeInt:
		return buildField[int](fd, fields)
	case TypeBool:
		return buildField[bool](fd, fields)
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidDefinition, fd.Type)
	}
}

func buildField[V comparable](fd *FieldDefinition, fields Fields) (*formz.Field[string, V], error) {
	var initial V
	if !fd.Initial.IsZero() {
		if err := fd.Initial.Decode(&initial); err != nil {
			return nil, fmt.Errorf("%w: initial value: %v", ErrInvalidDefinition, err)
		}
	}

	var validators []formz.Validator[V]
	tags, err := splitTags(fd.Rules)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		name, _, _ := strings.Cut(tag, "=")
		validators = append(validators, rules.Tag[V](tag, fd.message(name, tag)))
	}
	if fd.Equals != "" {
		other := fd.Equals
		text := fd.message(string(rules.TypeEquals), "equals "+other)
		validators = append(validators, formz.NewValidator(
			formz.ValidationMessage{Message: text, Type: rules.TypeEquals},
			func(v V) bool {
				o, ok := Lookup[V](fields, other)
				return ok && o.Input().Get() == v
			},
		))
	}

	field := formz.FieldOf(fd.Key, initial, validators...)
	if fd.Equals != "" {
		field.TriggeredBy(fd.Equals)
	}
	if len(fd.Triggers) > 0 {
		field.TriggeredBy(fd.Triggers...)
	}
	if fd.Disabled {
		field.WithEnabled(formz.NewValue(false))
	}
	if fd.Strategy != nil {
		field.WithStrategy(*fd.Strategy)
	}
	return field, nil
}

// message returns the configured text for a rule, or a default naming it.
func (fd *FieldDefinition) message(name, fallback string) string {
	if text, ok := fd.Messages[name]; ok {
		return text
	}
	return fmt.Sprintf("%s: failed %s", fd.Key, fallback)
}

func splitTags(s string) ([]string, error) {
	var out []string
	for _, tag := range strings.Split(s, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if strings.HasSuffix(tag, "=") {
			return nil, fmt.Errorf("%w: rule %q has an empty parameter (write a comma as 0x2C)", ErrInvalidDefinition, tag)
		}
		out = append(out, tag)
	}
	return out, nil
}
