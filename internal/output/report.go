package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"aws-alias/internal/alias"
)

// Report is the result object handed back to the orchestration host. The aws_*
// keys duplicate account_id and alias for playbooks that register the older names.
type Report struct {
	Changed         bool   `json:"changed"`
	AccountID       string `json:"account_id"`
	Alias           string `json:"alias"`
	AWSAccountID    string `json:"aws_account_id"`
	AWSAccountAlias string `json:"aws_account_alias"`
	CheckMode       bool   `json:"check_mode,omitempty"`
}

// Failure is written instead of a Report when the invocation cannot complete.
type Failure struct {
	Failed bool   `json:"failed"`
	Msg    string `json:"msg"`
}

// exitCoder is implemented by errors that choose their own process exit status.
type exitCoder interface {
	ExitCode() int
}

// ReportedError marks an error whose failure object is already on the output
// stream, so the caller should not print it again.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string {
	if e == nil || e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

func (e *ReportedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExitCode defers to the wrapped error and defaults to 1.
func (e *ReportedError) ExitCode() int {
	var ec exitCoder
	if e != nil && errors.As(e.Err, &ec) {
		if code := ec.ExitCode(); code != 0 {
			return code
		}
	}
	return 1
}

type Reporter struct {
	Out io.Writer
}

func NewReporter(out io.Writer) *Reporter {
	return &Reporter{Out: out}
}

func (r *Reporter) Exit(res alias.Result, checkMode bool) error {
	return r.write(Report{
		Changed:         res.Changed,
		AccountID:       res.AccountID,
		Alias:           res.Alias,
		AWSAccountID:    res.AccountID,
		AWSAccountAlias: res.Alias,
		CheckMode:       checkMode,
	})
}

// Fail writes the failure object and returns err marked as reported.
func (r *Reporter) Fail(err error) error {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if writeErr := r.write(Failure{Failed: true, Msg: msg}); writeErr != nil {
		panic(fmt.Sprintf("output.Fail failed to write: %v", writeErr)) //nolint:gocritic // the host has no other channel to read from
	}
	return &ReportedError{Err: err}
}

func (r *Reporter) write(v any) error {
	enc := json.NewEncoder(r.Out)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
