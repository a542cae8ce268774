package common

// TaskConfig contains all configuration for a single task. It is immutable
// after the task is created, with one exception: Resume is forced to true
// when a task is resumed.
type TaskConfig struct {
	URL      string
	Dir      string // Target directory
	Filename string // Output filename; empty lets aria2c choose

	Resume         bool   // Continue a partial download (-c)
	Split          int    // Number of splits per download
	MaxConnections int    // Connections per server; 0 defaults to Split
	MaxTries       int    // Maximum retries; 0 omits the flag
	RetryWait      int    // Seconds between retries; 0 omits the flag
	FileAllocation string // File allocation mode; empty means "none"

	MaxDownloadLimit string // Rate string, e.g. "1M"
	MaxUploadLimit   string

	Referer   string
	UserAgent string
	Headers   []string // Raw header lines, passed through in order

	ExtraArgs string // Free-form arguments, shell-tokenized
}

// Clone returns an independent copy of the config.
func (c *TaskConfig) Clone() *TaskConfig {
	out := *c
	out.Headers = append([]string(nil), c.Headers...)

	return &out
}
