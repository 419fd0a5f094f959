package core

// schema.go implements the custom schema interpreter.
//
// A schema maps field names to field specs. Specs are parsed once when the
// schema is loaded into one of three variants:
//
//	"number|18,65"  -> NumberRange{Min: 18, Max: 65}
//	"string|hello"  -> Literal{Value: "hello"} (any non-number type tag)
//	"firstName"     -> BareTag{Tag: "firstName"}
//
// Bare tags outside the known set resolve to UnknownValue instead of failing,
// so a slightly malformed schema still produces output. Syntax errors in the
// schema text itself are hard failures wrapped in ErrInvalidSchemaSyntax.

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSchemaSyntax is returned when schema text cannot be parsed.
var ErrInvalidSchemaSyntax = errors.New("invalid schema syntax")

// UnknownValue is produced for unrecognized field specs.
const UnknownValue = "Unknown"

// FieldSpec is a parsed field specification.
type FieldSpec interface {
	Resolve(r *rand.Rand, now time.Time) any
	String() string
}

// NumberRange produces a uniform integer in [Min, Max].
type NumberRange struct {
	Min, Max int
}

// Literal produces the same string for every record.
type Literal struct {
	Value string
}

// BareTag produces a value from one of the named primitives.
type BareTag struct {
	Tag string
}

func (n NumberRange) Resolve(r *rand.Rand, _ time.Time) any {
	return RandomInt(r, n.Min, n.Max)
}

func (n NumberRange) String() string {
	return fmt.Sprintf("number|%d,%d", n.Min, n.Max)
}

func (l Literal) Resolve(*rand.Rand, time.Time) any {
	return l.Value
}

func (l Literal) String() string {
	return "string|" + l.Value
}

func (b BareTag) Resolve(r *rand.Rand, now time.Time) any {
	switch b.Tag {
	case "firstName":
		return MustElement(r, FirstNames)
	case "lastName":
		return MustElement(r, LastNames)
	case "email":
		return Email(r)
	case "phone":
		return Phone(r)
	case "date":
		return Date(r, now)
	default:
		return UnknownValue
	}
}

func (b BareTag) String() string {
	return b.Tag
}

// ParseFieldSpec parses a raw spec string. It never fails: anything it cannot
// interpret becomes a BareTag that resolves to UnknownValue.
//
// Only the first two "|" segments count, and only the first two "," numbers of
// a number range: "number|1,2,3|x" is the range 1..2 and "string|a|b" is "a".
func ParseFieldSpec(raw string) FieldSpec {
	parts := strings.Split(raw, "|")
	if len(parts) < 2 {
		return BareTag{Tag: raw}
	}
	typeTag, params := parts[0], parts[1]

	if typeTag != "number" {
		return Literal{Value: params}
	}

	bounds := strings.Split(params, ",")
	if len(bounds) < 2 {
		return BareTag{Tag: raw}
	}
	min, errMin := strconv.Atoi(strings.TrimSpace(bounds[0]))
	max, errMax := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if errMin != nil || errMax != nil {
		return BareTag{Tag: raw}
	}
	if min > max {
		min, max = max, min
	}
	return NumberRange{Min: min, Max: max}
}

// SchemaField is one named entry of a schema.
type SchemaField struct {
	Name string
	Spec FieldSpec
}

// Schema is an ordered list of fields. Declaration order is record field order.
type Schema []SchemaField

// set adds or replaces a field. A repeated name keeps its first position.
func (s Schema) set(name string, spec FieldSpec) Schema {
	for i := range s {
		if s[i].Name == name {
			s[i].Spec = spec
			return s
		}
	}
	return append(s, SchemaField{Name: name, Spec: spec})
}

// ParseSchema parses JSON schema text such as {"name": "firstName", "age": "number|18,65"}.
// Object key order is preserved.
func ParseSchema(text string) (Schema, error) {
	data := []byte(text)
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchemaSyntax, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchemaSyntax, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: schema must be a JSON object", ErrInvalidSchemaSyntax)
	}

	schema := Schema{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchemaSyntax, err)
		}
		name, _ := keyTok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrInvalidSchemaSyntax, name, err)
		}
		spec, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: field %q must be a string spec", ErrInvalidSchemaSyntax, name)
		}
		schema = schema.set(name, ParseFieldSpec(spec))
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchemaSyntax, err)
	}

	return schema, nil
}

// ParseSchemaYAML parses a YAML mapping of field names to spec strings.
// Mapping order is preserved.
func ParseSchemaYAML(text string) (Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchemaSyntax, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidSchemaSyntax)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: schema must be a mapping (line %d)", ErrInvalidSchemaSyntax, root.Line)
	}

	schema := Schema{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: field %q must be a string spec (line %d)", ErrInvalidSchemaSyntax, key.Value, val.Line)
		}
		schema = schema.set(key.Value, ParseFieldSpec(val.Value))
	}
	return schema, nil
}

// GenerateFromSchema builds count records, resolving each field in declared order.
func GenerateFromSchema(r *rand.Rand, now time.Time, schema Schema, count int) Dataset {
	data := make(Dataset, 0, count)
	for i := 0; i < count; i++ {
		rec := NewRecord(len(schema))
		for _, f := range schema {
			rec.Set(f.Name, f.Spec.Resolve(r, now))
		}
		data = append(data, rec)
	}
	return data
}
