package domain

import "time"

// Outcome is the closed vocabulary a report assigns to each result
type Outcome string

const (
	OutcomePassed       Outcome = "Passed"
	OutcomeFailed       Outcome = "Failed"
	OutcomeTimeout      Outcome = "Timeout"
	OutcomePending      Outcome = "Pending"
	OutcomeNotExecuted  Outcome = "NotExecuted"
	OutcomeInconclusive Outcome = "Inconclusive"
)

// ReportEntry is the report-native form of a TestRecord
type ReportEntry struct {
	TestID                   string
	TestName                 string
	CodeBase                 string
	MethodName               string
	ClassName                string
	ComputerName             string
	Outcome                  Outcome
	Duration                 string
	StartTime                string
	EndTime                  string
	ErrorMessage             string
	ErrorStack               string
	ExecutionID              string
	RelativeResultsDirectory string
	ResultFiles              []string
}

// RunMetadata describes the run as a whole
type RunMetadata struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	User           string    `json:"user"`
	ExecutionID    string    `json:"execution_id"`
	DeploymentRoot string    `json:"deployment_root"`
	Creation       time.Time `json:"creation"`
	Queuing        time.Time `json:"queuing"`
	Start          time.Time `json:"start"`
	Finish         time.Time `json:"finish"`
}

// RunResults is what the aggregator hands over once the run has ended
type RunResults struct {
	Records []*TestRecord // Frozen, in first-insertion order
	Start   time.Time     // Earliest record start
	End     time.Time     // Latest record end
	Stats   *RunStats     // Runner statistics, nil when the stream had none
}

// Counters tallies results per outcome
type Counters struct {
	Total        int `json:"total"`
	Executed     int `json:"executed"`
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	Timeout      int `json:"timeout"`
	Inconclusive int `json:"inconclusive"`
	NotExecuted  int `json:"not_executed"`
	Pending      int `json:"pending"`
}

// Add counts one result with the given outcome
func (c *Counters) Add(o Outcome) {
	c.Total++
	switch o {
	case OutcomePassed:
		c.Passed++
		c.Executed++
	case OutcomeFailed:
		c.Failed++
		c.Executed++
	case OutcomeTimeout:
		c.Timeout++
		c.Executed++
	case OutcomeInconclusive:
		c.Inconclusive++
		c.Executed++
	case OutcomeNotExecuted:
		c.NotExecuted++
	case OutcomePending:
		c.Pending++
	}
}

// RunSummary is the persisted digest of the last emitted run
type RunSummary struct {
	Run         RunMetadata   `json:"run"`
	Counters    Counters      `json:"counters"`
	Excluded    int           `json:"excluded_pending"`
	ReportPath  string        `json:"report_path"`
	ArtifactDir string        `json:"artifact_dir"`
	Failures    []FailedEntry `json:"failures"`
}

// HasFailures reports whether any result failed or timed out
func (s *RunSummary) HasFailures() bool {
	return s.Counters.Failed > 0 || s.Counters.Timeout > 0
}
