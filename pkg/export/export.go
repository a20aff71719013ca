package export

// Dataset is the tabular shape shared by all exporters.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}
