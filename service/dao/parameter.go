package dao

// Parameter represents a List filter
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a filter parameter; multiple values are matched as alternatives
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}

// Values returns parameter value as a string slice
func (p *Parameter) Values() []string {
	switch actual := p.Value.(type) {
	case string:
		return []string{actual}
	case []string:
		return actual
	}
	return nil
}

// Matches returns true when candidate equals any parameter value
func (p *Parameter) Matches(candidate string) bool {
	for _, v := range p.Values() {
		if v == candidate {
			return true
		}
	}
	return false
}
