package discover

import "time"

// Request is a container-discovery request: look at a file's bytes and
// report what kind of container it is without decoding every dive.
type Request struct {
	FilePath string
	Variant  string // "can", "wan", or "ana"; matched against the file extension when empty
}

// Response reports what DecodeFile's header pass found, without walking
// any dives.
type Response struct {
	FilePath     string        `json:"file_path"`
	Variant      string        `json:"variant"`
	Format       string        `json:"format"`
	Model        string        `json:"model"`
	Family       string        `json:"family"`
	LogSize      int           `json:"log_size"`
	PointerCount int           `json:"pointer_count"`
	SearchTime   time.Duration `json:"search_time"`
}
