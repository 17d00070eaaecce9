// Package form binds flat field values to resource payloads: presence
// checks, derived fields and date format conversion.
package form

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/sma-dashboard/internal/models"
)

// RequiredError lists required fields left blank.
type RequiredError struct {
	Fields []models.Field
}

func (e *RequiredError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Label+" is required")
	}
	return strings.Join(msgs, ", ")
}

// FieldError reports a value that cannot be converted for the API.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }

// Form holds the values of one add/edit dialog. Keys are JSON field names;
// nested fields use dots ("permanentAddress.city", "address.0.line1").
// Date fields hold the input format YYYY-MM-DD.
type Form struct {
	res    models.Resource
	values map[string]string
}

// New returns an empty form for the resource.
func New(res models.Resource) *Form {
	return &Form{res: res, values: make(map[string]string)}
}

// Resource returns the resource the form edits.
func (f *Form) Resource() models.Resource { return f.res }

// Set updates a field and recomputes derived fields.
func (f *Form) Set(key, value string) {
	f.values[key] = value
	f.project()
}

// Get returns the current value of a field.
func (f *Form) Get(key string) string { return f.values[key] }

// Values returns a copy of all field values.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Locked reports whether key is currently derived from another field and so
// not editable.
func (f *Form) Locked(key string) bool {
	for _, p := range f.res.Projections {
		if f.flag(p.Flag) && hasPrefix(key, p.To) {
			return true
		}
	}
	return false
}

// Validate checks that every required field is present after trimming.
func (f *Form) Validate() error {
	var missing []models.Field
	for _, field := range f.res.Required {
		if strings.TrimSpace(f.values[field.Key]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &RequiredError{Fields: missing}
	}
	return nil
}

// project copies source fields onto target fields for every active "same as"
// flag. The target mirrors the source exactly; stale target keys are dropped.
// When the flag is off nothing happens, so the copied values stay editable.
func (f *Form) project() {
	for _, p := range f.res.Projections {
		if !f.flag(p.Flag) {
			continue
		}
		for key := range f.values {
			if hasPrefix(key, p.To) {
				delete(f.values, key)
			}
		}
		copied := make(map[string]string)
		for key, value := range f.values {
			if hasPrefix(key, p.From) {
				copied[p.To+strings.TrimPrefix(key, p.From)] = value
			}
		}
		for key, value := range copied {
			f.values[key] = value
		}
	}
}

func (f *Form) flag(key string) bool {
	on, err := strconv.ParseBool(strings.TrimSpace(f.values[key]))
	return err == nil && on
}

func hasPrefix(key, prefix string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+".")
}

// Payload builds the JSON body sent to the API. Date fields are converted to
// DD/MM/YYYY, number and bool fields are typed, blank optional numbers are
// omitted.
func (f *Form) Payload() (map[string]interface{}, error) {
	root := make(map[string]interface{})
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		raw := strings.TrimSpace(f.values[key])
		var value interface{} = raw
		switch {
		case f.res.IsDateField(key):
			converted, err := ToAPIDate(raw)
			if err != nil {
				return nil, &FieldError{Field: key, Err: err}
			}
			value = converted
		case contains(f.res.NumberFields, key):
			if raw == "" {
				continue
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, &FieldError{Field: key, Err: fmt.Errorf("must be a number")}
			}
			value = n
		case contains(f.res.BoolFields, key):
			value = raw != "" && f.flag(key)
		}
		if err := setPath(root, strings.Split(key, "."), value); err != nil {
			return nil, &FieldError{Field: key, Err: err}
		}
	}
	for k, v := range root {
		root[k] = arrayify(v)
	}
	return root, nil
}

// Decode builds a typed payload from the form.
func Decode[T any](f *Form) (T, error) {
	var out T
	payload, err := f.Payload()
	if err != nil {
		return out, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}

// FromRecord fills a form from an existing record for editing. API dates are
// converted back to the input format.
func FromRecord(res models.Resource, record interface{}) (*Form, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var tree map[string]interface{}
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	for _, skip := range []string{"id", "createdAt", "updatedAt"} {
		delete(tree, skip)
	}

	f := New(res)
	flatten("", tree, f.values)
	for _, key := range res.DateFields {
		if v, ok := f.values[key]; ok && v != "" {
			converted, err := ToInputDate(v)
			if err != nil {
				return nil, &FieldError{Field: key, Err: err}
			}
			f.values[key] = converted
		}
	}
	f.project()
	return f, nil
}

func setPath(node map[string]interface{}, path []string, value interface{}) error {
	head := path[0]
	if len(path) == 1 {
		if _, isMap := node[head].(map[string]interface{}); isMap {
			return fmt.Errorf("field conflicts with nested fields")
		}
		node[head] = value
		return nil
	}
	child, ok := node[head].(map[string]interface{})
	if !ok {
		if _, exists := node[head]; exists {
			return fmt.Errorf("field conflicts with scalar value")
		}
		child = make(map[string]interface{})
		node[head] = child
	}
	return setPath(child, path[1:], value)
}

// arrayify turns maps whose keys are all indices into slices.
func arrayify(node interface{}) interface{} {
	m, ok := node.(map[string]interface{})
	if !ok {
		return node
	}
	for k, v := range m {
		m[k] = arrayify(v)
	}
	if len(m) == 0 {
		return m
	}
	indices := make([]int, 0, len(m))
	for k := range m {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			return m
		}
		indices = append(indices, i)
	}
	sort.Ints(indices)
	list := make([]interface{}, 0, len(indices))
	for _, i := range indices {
		list = append(list, m[strconv.Itoa(i)])
	}
	return list
}

func flatten(prefix string, node interface{}, out map[string]string) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch v := node.(type) {
	case map[string]interface{}:
		for k, child := range v {
			flatten(join(k), child, out)
		}
	case []interface{}:
		for i, child := range v {
			flatten(join(strconv.Itoa(i)), child, out)
		}
	case nil:
	case json.Number:
		out[prefix] = v.String()
	case bool:
		out[prefix] = strconv.FormatBool(v)
	default:
		out[prefix] = fmt.Sprint(v)
	}
}

func contains(list []string, key string) bool {
	for _, item := range list {
		if item == key {
			return true
		}
	}
	return false
}
