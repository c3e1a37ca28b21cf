package entity

// Fields is a free-form key/value table. Values are plain Go values:
// float64, int64, bool, string, []any or map[string]any.
type Fields map[string]any

func (f Fields) Get(key string) (any, bool) {
	v, ok := f[key]
	return v, ok
}

func (f Fields) Set(key string, v any) {
	f[key] = v
}

func (f Fields) Delete(key string) {
	delete(f, key)
}

func (f Fields) Float(key string) (float64, bool) {
	switch v := f[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (f Fields) Bool(key string) bool {
	v, _ := f[key].(bool)
	return v
}
