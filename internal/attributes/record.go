package attributes

// A single named attribute value
type Attribute struct {
	Name  string
	Value string
}

// An ordered mapping from namespaced attribute keys (`view:attribute`) to string values.
// A Record is built once per file by a Collector or by Decode and is not modified afterwards.
type Record struct {
	keys   []string
	values map[string]string
}

// Stores a value, keeping the position of the first insertion when a key repeats
func (record *Record) set(key string, value string) {
	if record.values == nil {
		record.values = make(map[string]string)
	}
	if _, exists := record.values[key]; !exists {
		record.keys = append(record.keys, key)
	}
	record.values[key] = value
}

// Returns the number of attributes in the record
func (record Record) Len() int {
	return len(record.keys)
}

// Retrieves the value for the specified key
func (record Record) Get(key string) (string, bool) {
	value, ok := record.values[key]
	return value, ok
}

// Returns the keys in record order
func (record Record) Keys() []string {
	return append([]string(nil), record.keys...)
}

// Returns the attributes in record order
func (record Record) Attributes() []Attribute {
	attrs := make([]Attribute, 0, len(record.keys))
	for _, key := range record.keys {
		attrs = append(attrs, Attribute{Name: key, Value: record.values[key]})
	}
	return attrs
}

// Returns a copy of the record as a plain map
func (record Record) Map() map[string]string {
	out := make(map[string]string, len(record.keys))
	for _, key := range record.keys {
		out[key] = record.values[key]
	}
	return out
}

// Determines whether two records hold the same keys and values, regardless of order
func (record Record) Equal(other Record) bool {
	if record.Len() != other.Len() {
		return false
	}
	for _, key := range record.keys {
		value, ok := other.values[key]
		if !ok || value != record.values[key] {
			return false
		}
	}
	return true
}
