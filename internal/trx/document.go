package trx

import (
	"encoding/xml"
	"fmt"

	"trxr/internal/domain"
)

const (
	xmlns              = "http://microsoft.com/schemas/VisualStudio/TeamTest/2010"
	unitTestType       = "13cdc9d9-ddb5-4fa4-a97d-d965ccfc6d4b"
	adapterTypeName    = "Microsoft.VisualStudio.TestTools.TestTypes.Unit.UnitTestAdapter"
	resultsNotInListID = "8c84fa94-04c1-424b-9868-57a2d4851a1d"
	allLoadedResultsID = "19431567-8539-422a-85d7-44ee4e166bda"
	settingsName       = "default"
)

// TestRun is the root element of a TRX document
type TestRun struct {
	XMLName         xml.Name         `xml:"TestRun"`
	Xmlns           string           `xml:"xmlns,attr"`
	ID              string           `xml:"id,attr"`
	Name            string           `xml:"name,attr"`
	RunUser         string           `xml:"runUser,attr,omitempty"`
	Times           Times            `xml:"Times"`
	Settings        TestSettings     `xml:"TestSettings"`
	Results         []UnitTestResult `xml:"Results>UnitTestResult"`
	TestDefinitions []UnitTest       `xml:"TestDefinitions>UnitTest"`
	TestEntries     []TestEntry      `xml:"TestEntries>TestEntry"`
	TestLists       []TestList       `xml:"TestLists>TestList"`
	ResultSummary   ResultSummary    `xml:"ResultSummary"`
}

type Times struct {
	Creation string `xml:"creation,attr"`
	Queuing  string `xml:"queuing,attr"`
	Start    string `xml:"start,attr"`
	Finish   string `xml:"finish,attr"`
}

type TestSettings struct {
	Name       string     `xml:"name,attr"`
	ID         string     `xml:"id,attr"`
	Deployment Deployment `xml:"Deployment"`
}

type Deployment struct {
	RunDeploymentRoot string `xml:"runDeploymentRoot,attr"`
}

type UnitTestResult struct {
	ExecutionID              string       `xml:"executionId,attr"`
	TestID                   string       `xml:"testId,attr"`
	TestName                 string       `xml:"testName,attr"`
	ComputerName             string       `xml:"computerName,attr"`
	Duration                 string       `xml:"duration,attr"`
	StartTime                string       `xml:"startTime,attr,omitempty"`
	EndTime                  string       `xml:"endTime,attr,omitempty"`
	TestType                 string       `xml:"testType,attr"`
	Outcome                  string       `xml:"outcome,attr"`
	TestListID               string       `xml:"testListId,attr"`
	RelativeResultsDirectory string       `xml:"relativeResultsDirectory,attr,omitempty"`
	Output                   *Output      `xml:"Output,omitempty"`
	ResultFiles              []ResultFile `xml:"ResultFiles>ResultFile"`
}

type Output struct {
	ErrorInfo ErrorInfo `xml:"ErrorInfo"`
}

type ErrorInfo struct {
	Message    string `xml:"Message"`
	StackTrace string `xml:"StackTrace"`
}

type ResultFile struct {
	Path string `xml:"path,attr"`
}

type UnitTest struct {
	Name       string     `xml:"name,attr"`
	Storage    string     `xml:"storage,attr"`
	ID         string     `xml:"id,attr"`
	Execution  Execution  `xml:"Execution"`
	TestMethod TestMethod `xml:"TestMethod"`
}

type Execution struct {
	ID string `xml:"id,attr"`
}

type TestMethod struct {
	CodeBase        string `xml:"codeBase,attr"`
	AdapterTypeName string `xml:"adapterTypeName,attr"`
	ClassName       string `xml:"className,attr"`
	Name            string `xml:"name,attr"`
}

type TestEntry struct {
	TestID      string `xml:"testId,attr"`
	ExecutionID string `xml:"executionId,attr"`
	TestListID  string `xml:"testListId,attr"`
}

type TestList struct {
	Name string `xml:"name,attr"`
	ID   string `xml:"id,attr"`
}

type ResultSummary struct {
	Outcome  string   `xml:"outcome,attr"`
	Counters Counters `xml:"Counters"`
}

type Counters struct {
	Total               int `xml:"total,attr"`
	Executed            int `xml:"executed,attr"`
	Passed              int `xml:"passed,attr"`
	Failed              int `xml:"failed,attr"`
	Error               int `xml:"error,attr"`
	Timeout             int `xml:"timeout,attr"`
	Aborted             int `xml:"aborted,attr"`
	Inconclusive        int `xml:"inconclusive,attr"`
	PassedButRunAborted int `xml:"passedButRunAborted,attr"`
	NotRunnable         int `xml:"notRunnable,attr"`
	NotExecuted         int `xml:"notExecuted,attr"`
	Disconnected        int `xml:"disconnected,attr"`
	Warning             int `xml:"warning,attr"`
	Completed           int `xml:"completed,attr"`
	InProgress          int `xml:"inProgress,attr"`
	Pending             int `xml:"pending,attr"`
}

// Count tallies entries per outcome
func Count(entries []domain.ReportEntry) domain.Counters {
	var c domain.Counters
	for _, e := range entries {
		c.Add(e.Outcome)
	}
	return c
}

// NewDocument assembles a TRX document from the run metadata and entries.
// Entries keep their order.
func NewDocument(meta domain.RunMetadata, entries []domain.ReportEntry) *TestRun {
	counts := Count(entries)
	summary := "Completed"
	if counts.Failed > 0 || counts.Timeout > 0 {
		summary = "Failed"
	}

	run := &TestRun{
		Xmlns:   xmlns,
		ID:      meta.ID,
		Name:    meta.Name,
		RunUser: meta.User,
		Times: Times{
			Creation: FormatTimestamp(meta.Creation),
			Queuing:  FormatTimestamp(meta.Queuing),
			Start:    FormatTimestamp(meta.Start),
			Finish:   FormatTimestamp(meta.Finish),
		},
		Settings: TestSettings{
			Name:       settingsName,
			ID:         TestID("settings:" + meta.ID),
			Deployment: Deployment{RunDeploymentRoot: meta.DeploymentRoot},
		},
		Results:         make([]UnitTestResult, 0, len(entries)),
		TestDefinitions: make([]UnitTest, 0, len(entries)),
		TestEntries:     make([]TestEntry, 0, len(entries)),
		TestLists: []TestList{
			{Name: "Results Not in a List", ID: resultsNotInListID},
			{Name: "All Loaded Results", ID: allLoadedResultsID},
		},
		ResultSummary: ResultSummary{
			Outcome: summary,
			Counters: Counters{
				Total:        counts.Total,
				Executed:     counts.Executed,
				Passed:       counts.Passed,
				Failed:       counts.Failed,
				Timeout:      counts.Timeout,
				Inconclusive: counts.Inconclusive,
				NotExecuted:  counts.NotExecuted,
				Pending:      counts.Pending,
			},
		},
	}

	for _, e := range entries {
		result := UnitTestResult{
			ExecutionID:              e.ExecutionID,
			TestID:                   e.TestID,
			TestName:                 e.TestName,
			ComputerName:             e.ComputerName,
			Duration:                 e.Duration,
			StartTime:                e.StartTime,
			EndTime:                  e.EndTime,
			TestType:                 unitTestType,
			Outcome:                  string(e.Outcome),
			TestListID:               resultsNotInListID,
			RelativeResultsDirectory: e.RelativeResultsDirectory,
		}
		if e.ErrorMessage != "" || e.ErrorStack != "" {
			result.Output = &Output{ErrorInfo: ErrorInfo{Message: e.ErrorMessage, StackTrace: e.ErrorStack}}
		}
		for _, f := range e.ResultFiles {
			result.ResultFiles = append(result.ResultFiles, ResultFile{Path: f})
		}
		run.Results = append(run.Results, result)

		run.TestDefinitions = append(run.TestDefinitions, UnitTest{
			Name:      e.TestName,
			Storage:   e.CodeBase,
			ID:        e.TestID,
			Execution: Execution{ID: e.ExecutionID},
			TestMethod: TestMethod{
				CodeBase:        e.CodeBase,
				AdapterTypeName: adapterTypeName,
				ClassName:       e.ClassName,
				Name:            e.MethodName,
			},
		})

		run.TestEntries = append(run.TestEntries, TestEntry{
			TestID:      e.TestID,
			ExecutionID: e.ExecutionID,
			TestListID:  resultsNotInListID,
		})
	}

	return run
}

// Marshal renders the document with an XML declaration
func (r *TestRun) Marshal() ([]byte, error) {
	body, err := xml.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal trx: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
