package alias

import (
	"errors"

	"github.com/aws/smithy-go"
)

// RemoteCallError wraps any failure of an STS or IAM call. Service conflicts such as
// EntityAlreadyExists or NoSuchEntity are reported through it like any other error.
// The message is the underlying error's, unchanged; Op is only for logs.
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string {
	if e == nil {
		return "remote call failed"
	}
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *RemoteCallError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Code returns the service error code (for example "EntityAlreadyExists"), or an
// empty string for transport failures.
func (e *RemoteCallError) Code() string {
	var apiErr smithy.APIError
	if e != nil && errors.As(e.Err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func remoteErr(op string, err error) error {
	return &RemoteCallError{Op: op, Err: err}
}
