// Package metadata implements the file protocol through which a stage process
// and the pipeline orchestrator exchange structured records. Every record
// lives at an orchestrator-specified path, is validated against its Schema on
// read, and is written atomically so a concurrent reader never observes a
// partially written document.
package metadata

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/go-stagehand/stagehand"
	serrors "github.com/go-stagehand/stagehand/errors"
	"github.com/go-stagehand/stagehand/logging"
	uuid "github.com/gofrs/uuid"
	"github.com/tidwall/gjson"
)

// recordPrefix distinguishes protocol files from stage-created files within
// the metadata directory
const recordPrefix = "_"

// timestampFormat is the timestamp layout used in journal entries and logs
const timestampFormat = "2006-01-02 15:04:05"

// Names of the record kinds exchanged between orchestrator and stage
const (
	// ArgsRecord holds the stage inputs (merged with chunk inputs for a
	// chunk's main phase)
	ArgsRecord = "args"
	// OutsRecord holds the outputs of a main or join phase
	OutsRecord = "outs"
	// StageDefsRecord holds the StageDef produced by the split phase
	StageDefsRecord = "stage_defs"
	// ChunkDefsRecord holds the replayed chunk definitions read by join
	ChunkDefsRecord = "chunk_defs"
	// ChunkOutsRecord holds the collected chunk outputs read by join
	ChunkOutsRecord = "chunk_outs"
	// JobInfoRecord holds the orchestrator-allocated environment for this invocation
	JobInfoRecord = "jobinfo"
	// ErrorsRecord receives the failure message of a failed invocation
	ErrorsRecord = "errors"
	// LogRecord receives timestamped log lines
	LogRecord = "log"
	// AlarmRecord receives non-fatal warnings surfaced to the pipeline user
	AlarmRecord = "alarm"
	// StackvarsRecord receives a stack trace when an invocation panics
	StackvarsRecord = "stackvars"
	// CompleteRecord marks a successfully completed invocation
	CompleteRecord = "complete"
)

// Version identifies the orchestrator and pipeline builds driving this invocation
type Version struct {
	Runtime   string `json:"runtime"`
	Pipelines string `json:"pipelines"`
}

// JobInfo is the parsed portion of the job-metadata record: the resources
// actually allocated to this invocation by the orchestrator, plus versioning
type JobInfo struct {
	Threads int     `json:"threads"`
	MemGB   int     `json:"memGB"`
	VMemGB  int     `json:"vmemGB"`
	Version Version `json:"version"`
}

// adapterInfo is written back into the job-metadata record under the
// "adapter" key, so the orchestrator can report what executed the stage
type adapterInfo struct {
	BinPath      string `json:"binpath"`
	InvocationID string `json:"invocation_id"`
}

// Metadata tracks the file protocol for one stage invocation
type Metadata struct {
	StageName string
	Phase     string
	FilesPath string

	metadataPath string
	runFile      string
	jobInfo      JobInfo
	journaled    map[string]bool
}

// CreateMetadata is a factory for Metadata, given the orchestrator-resolved
// paths for one invocation
func CreateMetadata(stageName string, phase string, metadataPath string, filesPath string, runFile string) *Metadata {
	return &Metadata{
		StageName:    stageName,
		Phase:        phase,
		FilesPath:    filesPath,
		metadataPath: metadataPath,
		runFile:      runFile,
		journaled:    make(map[string]bool),
	}
}

// MakePath returns the path of a named record within the metadata directory
func (m *Metadata) MakePath(name string) string {
	return filepath.Join(m.metadataPath, recordPrefix+name)
}

// JobInfo returns the parsed job-metadata for this invocation. Zero until
// UpdateJobInfo has run.
func (m *Metadata) JobInfo() JobInfo {
	return m.jobInfo
}

// Resource returns the allocated resources of this invocation as a Resource
func (m *Metadata) Resource() stagehand.Resource {
	return stagehand.CreateResource().
		WithMemGB(m.jobInfo.MemGB).
		WithVMemGB(m.jobInfo.VMemGB).
		WithThreads(m.jobInfo.Threads)
}

// UpdateJobInfo reads the job-metadata record, parses the fields this adapter
// cares about, and writes the record back with this adapter's own section
// added under the "adapter" key
func (m *Metadata) UpdateJobInfo() error {
	raw, err := ioutil.ReadFile(m.MakePath(JobInfoRecord))
	if err != nil {
		return fmt.Errorf("Unable to read job metadata: %v", err)
	}
	var jobInfo JobInfo
	if err := json.Unmarshal(raw, &jobInfo); err != nil {
		return fmt.Errorf("Unable to parse job metadata: %v", err)
	}
	var full map[string]interface{}
	if err := json.Unmarshal(raw, &full); err != nil {
		return fmt.Errorf("Unable to parse job metadata: %v", err)
	}

	binPath := "unknown"
	if exe, err := os.Executable(); err == nil {
		binPath = exe
	}
	invocationID := ""
	if id, err := uuid.NewV4(); err == nil {
		invocationID = id.String()
	}
	full["adapter"] = adapterInfo{BinPath: binPath, InvocationID: invocationID}

	if err := m.writeJSON(JobInfoRecord, full); err != nil {
		return err
	}
	m.jobInfo = jobInfo
	return nil
}

// ReadRecord reads a named record and validates it against a Schema. A
// missing or null value for a field whose kind is not optional is a
// contract violation and fails fast; optional fields yield a nil entry.
// Values for fields outside the schema are ignored.
func (m *Metadata) ReadRecord(name string, s stagehand.Schema) (stagehand.Record, error) {
	parsed, err := m.parseRecordFile(name)
	if err != nil {
		return nil, err
	}
	return m.validateRecord(name, parsed, s)
}

// ReadRawRecord reads a named record without schema validation
func (m *Metadata) ReadRawRecord(name string) (stagehand.Record, error) {
	parsed, err := m.parseRecordFile(name)
	if err != nil {
		return nil, err
	}
	record, ok := parsed.Value().(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("Record %s is not a keyed document", m.MakePath(name))
	}
	return stagehand.Record(record), nil
}

// ReadRecordArray reads a named record containing an array of documents,
// validating each element against a Schema
func (m *Metadata) ReadRecordArray(name string, s stagehand.Schema) ([]stagehand.Record, error) {
	parsed, err := m.parseRecordFile(name)
	if err != nil {
		return nil, err
	}
	if !parsed.IsArray() {
		return nil, fmt.Errorf("Record %s is not an array", m.MakePath(name))
	}
	records := []stagehand.Record{}
	var elemErr error
	parsed.ForEach(func(_, elem gjson.Result) bool {
		record, err := m.validateRecord(name, elem, s)
		if err != nil {
			elemErr = err
			return false
		}
		records = append(records, record)
		return true
	})
	if elemErr != nil {
		return nil, elemErr
	}
	return records, nil
}

func (m *Metadata) parseRecordFile(name string) (gjson.Result, error) {
	path := m.MakePath(name)
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("Unable to read record %s: %v", path, err)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("Record %s is not a valid document", path)
	}
	return gjson.ParseBytes(raw), nil
}

// validateRecord extracts each schema field from a parsed document, enforcing
// the optionality contract
func (m *Metadata) validateRecord(name string, parsed gjson.Result, s stagehand.Schema) (stagehand.Record, error) {
	if !parsed.IsObject() {
		return nil, fmt.Errorf("Record %s is not a keyed document", m.MakePath(name))
	}
	record := make(stagehand.Record, s.NumFields())
	err := s.ForEachField(func(f stagehand.Field) error {
		value := parsed.Get(f.Name())
		if !value.Exists() || value.Type == gjson.Null {
			if stagehand.IsOptionalKind(f.Kind()) {
				record[f.Name()] = nil
				return nil
			}
			return serrors.ContractViolationError{Field: f.Name(), Path: m.MakePath(name)}
		}
		record[f.Name()] = value.Value()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// WriteRecord writes a named record. Re-running a phase overwrites its
// records rather than appending to or corrupting them.
func (m *Metadata) WriteRecord(name string, record stagehand.Record) error {
	return m.writeJSON(name, record)
}

// WriteStageDef writes the stage-definition record produced by a split phase
func (m *Metadata) WriteStageDef(def *stagehand.StageDef) error {
	return m.writeJSON(StageDefsRecord, def)
}

// ReadStageDef reads back a previously written stage-definition record
func (m *Metadata) ReadStageDef() (*stagehand.StageDef, error) {
	path := m.MakePath(StageDefsRecord)
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Unable to read record %s: %v", path, err)
	}
	var def stagehand.StageDef
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("Unable to parse record %s: %v", path, err)
	}
	return &def, nil
}

// writeJSON marshals any value as an indented document and writes it atomically
func (m *Metadata) writeJSON(name string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "    ")
	if err != nil {
		return fmt.Errorf("Unable to serialize record %s: %v", name, err)
	}
	if err := writeFileAtomic(m.MakePath(name), data); err != nil {
		return err
	}
	return m.UpdateJournal(name)
}

// WriteRaw writes raw text to a named record atomically
func (m *Metadata) WriteRaw(name string, text string) error {
	if err := writeFileAtomic(m.MakePath(name), []byte(text)); err != nil {
		return err
	}
	return m.UpdateJournal(name)
}

// appendRaw appends a line to a named record. Append channels (log, alarm)
// trade atomicity for preserving earlier lines.
func (m *Metadata) appendRaw(name string, line string) error {
	f, err := os.OpenFile(m.MakePath(name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err = f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}
	// close before journaling, so the orchestrator never sees the journal
	// entry ahead of the content on networked filesystems
	if err = f.Close(); err != nil {
		return err
	}
	return m.UpdateJournal(name)
}

// Log writes a timestamped line to the log channel
func (m *Metadata) Log(level int, message string) error {
	line := fmt.Sprintf("%s [%s] %s", time.Now().Format(timestampFormat), logging.LogLevelToString(level), message)
	return m.appendRaw(LogRecord, line)
}

// Alarm surfaces a non-fatal warning to the pipeline user
func (m *Metadata) Alarm(message string) error {
	return m.appendRaw(AlarmRecord, fmt.Sprintf("%s %s", time.Now().Format(timestampFormat), message))
}

// WriteErrors reports a failed invocation to the orchestrator
func (m *Metadata) WriteErrors(message string) error {
	return m.WriteRaw(ErrorsRecord, message)
}

// WriteAssert reports an unrecoverable configuration error to the
// orchestrator; assert failures prevent pipeline restarts
func (m *Metadata) WriteAssert(message string) error {
	return m.WriteRaw(ErrorsRecord, "ASSERT:"+message)
}

// WriteStackvars records a stack trace for a panicked invocation
func (m *Metadata) WriteStackvars(trace string) error {
	return m.WriteRaw(StackvarsRecord, trace)
}

// Complete marks this invocation as successfully finished
func (m *Metadata) Complete() error {
	return m.WriteRaw(CompleteRecord, time.Now().Format(timestampFormat))
}

// UpdateJournal tells the orchestrator that a record has been updated, by
// touching a journal entry named for this invocation's phase. Entries are
// written once per record per invocation.
func (m *Metadata) UpdateJournal(name string) error {
	journalName := name
	if m.Phase != "" && m.Phase != "main" {
		journalName = m.Phase + "_" + name
	}
	if m.journaled[journalName] {
		return nil
	}
	if m.runFile == "" {
		// no journal in effect (e.g. local test runs)
		m.journaled[journalName] = true
		return nil
	}
	entry := m.runFile + "." + journalName
	tmp := entry + ".tmp"
	if err := ioutil.WriteFile(tmp, []byte(time.Now().Format(timestampFormat)), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, entry); err != nil && !os.IsNotExist(err) {
		// a missing temp file here means a duplicated rename already landed,
		// which can happen on overloaded networked filesystems
		return err
	}
	m.journaled[journalName] = true
	return nil
}

// writeFileAtomic makes a record visible in one step: content goes to a
// uniquely named temporary file in the same directory, then is renamed over
// the destination, so a reader never observes a partial record
func writeFileAtomic(path string, data []byte) error {
	suffix := "tmp"
	if id, err := uuid.NewV4(); err == nil {
		suffix = id.String()
	}
	tmp := fmt.Sprintf("%s.%s.partial", path, suffix)
	if err := ioutil.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
