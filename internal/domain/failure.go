package domain

// FailedHook is the unresolved hook failure tracked while its scope runs
type FailedHook struct {
	Title string
	Scope *Scope
	Err   *TestError
}

// FailedEntry is a failed result kept in the run summary for the viewers
type FailedEntry struct {
	TestName string  `json:"test_name"`
	CodeBase string  `json:"code_base"`
	Outcome  Outcome `json:"outcome"`
	Message  string  `json:"message"`
	Stack    string  `json:"stack,omitempty"`
	Artifact string  `json:"artifact,omitempty"`
	Resolved bool    `json:"resolved,omitempty"` // Toggled from the failure viewer
}
