package bridge

// Params is a decoded JSON request object. Accessors are strict about JSON
// types: a number sent as a string is treated as absent.
type Params map[string]interface{}

// String returns the string value of key.
func (p Params) String(key string) (string, bool) {
	v, ok := p[key].(string)
	return v, ok
}

// Float returns the numeric value of key.
func (p Params) Float(key string) (float64, bool) {
	v, ok := p[key].(float64)
	return v, ok
}

// FloatOr returns the numeric value of key, or def when absent.
func (p Params) FloatOr(key string, def float64) float64 {
	if v, ok := p.Float(key); ok {
		return v
	}
	return def
}

// BoolOr returns the boolean value of key, or def when absent.
func (p Params) BoolOr(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Query selects elements. Empty strings mean "not specified".
type Query struct {
	Identifier  string
	Label       string
	ElementType string

	// X and Y are an explicit point in application coordinates. When both
	// are set they take precedence over every other field.
	X, Y *float64
}

// QueryFrom extracts a query from request parameters.
func QueryFrom(p Params) Query {
	q := Query{}
	q.Identifier, _ = p.String("identifier")
	q.Label, _ = p.String("label")
	q.ElementType, _ = p.String("elementType")
	if x, ok := p.Float("x"); ok {
		q.X = &x
	}
	if y, ok := p.Float("y"); ok {
		q.Y = &y
	}
	return q
}

// HasPoint reports whether the query carries both coordinates.
func (q Query) HasPoint() bool {
	return q.X != nil && q.Y != nil
}
