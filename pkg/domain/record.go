package domain

// DefaultTextField is the implicit field name for string-literal call sites.
const DefaultTextField = "text"

// Field is a single named string value in a TextRecord.
type Field struct {
	Name  string
	Value string
}

// TextRecord is the canonical representation of one translatable unit.
// Fields keep the order in which they were first set.
type TextRecord struct {
	fields []Field
}

// NewTextRecord creates a record from the given fields, applying Set for each.
func NewTextRecord(fields ...Field) TextRecord {
	var r TextRecord
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Set assigns value to name. An existing field keeps its position and
// takes the new value, the way repeated keys behave in an object literal.
func (r *TextRecord) Set(name, value string) {
	for i := range r.fields {
		if r.fields[i].Name == name {
			r.fields[i].Value = value
			return
		}
	}
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

// Get returns the value stored under name.
func (r TextRecord) Get(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Fields returns a copy of the fields in encounter order.
func (r TextRecord) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// Len returns the number of fields.
func (r TextRecord) Len() int {
	return len(r.fields)
}

// Equal reports whether both records have the same fields in the same order.
func (r TextRecord) Equal(other TextRecord) bool {
	if len(r.fields) != len(other.fields) {
		return false
	}
	for i := range r.fields {
		if r.fields[i] != other.fields[i] {
			return false
		}
	}
	return true
}

// AppendJSON appends the compact JSON form of the record to dst.
// The output is byte-compatible with JSON.stringify on the equivalent object.
func (r TextRecord) AppendJSON(dst []byte) []byte {
	dst = append(dst, '{')
	for i, f := range r.fields {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = AppendJSString(dst, f.Name)
		dst = append(dst, ':')
		dst = AppendJSString(dst, f.Value)
	}
	return append(dst, '}')
}

// MarshalJSON implements json.Marshaler, preserving field order.
func (r TextRecord) MarshalJSON() ([]byte, error) {
	return r.AppendJSON(nil), nil
}

// String returns the compact JSON form.
func (r TextRecord) String() string {
	return string(r.AppendJSON(nil))
}
