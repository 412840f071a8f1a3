package tables

// Parameter is a single user defined query string parameter. Parameters are
// kept as an ordered slice rather than a map so that they are appended to
// the request URI in the order the caller supplied them.
type Parameter struct {
	Name  string
	Value string
}

func NewParameter(name, value string) Parameter {
	return Parameter{Name: name, Value: value}
}
