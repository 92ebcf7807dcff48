package export

// Dataset defines tabular export content with optional heading lines.
type Dataset struct {
	Title   string
	Lines   []string
	Headers []string
	Rows    [][]string
}
