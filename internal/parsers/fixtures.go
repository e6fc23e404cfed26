package parsers

// BuildFixtureLine renders a fixed-column line from a field table and a set
// of values, padding with spaces. Intended for tests and sample-report
// generation; production code only ever reads lines.
func BuildFixtureLine(specs []FieldSpec, values map[string]string) string {
	width := 0
	for _, spec := range specs {
		if end := spec.Start - 1 + spec.Length; end > width {
			width = end
		}
	}

	buf := make([]byte, width)
	for i := range buf {
		buf[i] = ' '
	}
	for _, spec := range specs {
		value := values[spec.Name]
		if len(value) > spec.Length {
			value = value[:spec.Length]
		}
		copy(buf[spec.Start-1:], value)
	}
	return string(buf)
}
