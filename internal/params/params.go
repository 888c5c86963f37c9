package params

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"aws-alias/internal/alias"
	"aws-alias/internal/awsaccount"
)

// ErrMissingCredentials is returned when neither a parameter nor the environment
// provides an access key or secret key.
var ErrMissingCredentials = errors.New("missing AWS credentials")

// InvalidExitCode is the process status for parameters that fail validation.
const InvalidExitCode = 2

// ValidationError reports parameters that cannot be resolved into a Spec.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	if e == nil || e.Err == nil {
		return "invalid parameters"
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ValidationError) ExitCode() int {
	return InvalidExitCode
}

// Spec is the validated input of a single invocation.
type Spec struct {
	Alias        string
	State        alias.State
	AccessKey    string
	SecretKey    string
	SessionToken string
	Region       string
	CheckMode    bool
}

func (s Spec) Desired() alias.Desired {
	return alias.Desired{Alias: s.Alias, State: s.State}
}

func (s Spec) Credentials() awsaccount.Credentials {
	return awsaccount.Credentials{
		AccessKey:    s.AccessKey,
		SecretKey:    s.SecretKey,
		SessionToken: s.SessionToken,
	}
}

// Args are the raw parameters as supplied by the host. The aws_* keys are the names
// used by existing playbooks and are accepted as fallbacks.
type Args struct {
	Alias        string `yaml:"alias"`
	State        string `yaml:"state"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	SessionToken string `yaml:"session_token"`
	Region       string `yaml:"region"`

	LegacyAlias     string `yaml:"aws_account_alias"`
	LegacyState     string `yaml:"aws_account_state"`
	LegacyAccessKey string `yaml:"aws_access_key"`
	LegacySecretKey string `yaml:"aws_secret_key"`

	CheckMode bool `yaml:"_ansible_check_mode"`
}

// Options controls how Args are resolved into a Spec.
type Options struct {
	// Overrides are applied on top of the args file, typically from flags.
	Overrides Args
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

func (o *Options) applyDefaults() {
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
}

// LoadFile reads an args file. Both JSON and YAML documents are accepted.
func LoadFile(path string) (Args, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Args{}, fmt.Errorf("read args file: %w", err)
	}
	return Parse(data)
}

// Parse decodes args with yaml.v3, which also reads JSON. Unlike a JSON decoder it
// rejects a document that repeats a key instead of keeping the last value; the host
// never writes duplicate keys.
func Parse(data []byte) (Args, error) {
	var args Args
	if len(strings.TrimSpace(string(data))) == 0 {
		return args, nil
	}
	if err := yaml.Unmarshal(data, &args); err != nil {
		return Args{}, fmt.Errorf("parse args: %w", err)
	}
	return args, nil
}

// Resolve merges overrides and environment fallbacks into a validated Spec.
func Resolve(args Args, opts Options) (Spec, error) {
	opts.applyDefaults()
	o := opts.Overrides

	spec := Spec{
		Alias:        firstNonEmpty(o.Alias, o.LegacyAlias, args.Alias, args.LegacyAlias),
		AccessKey:    firstNonEmpty(o.AccessKey, o.LegacyAccessKey, args.AccessKey, args.LegacyAccessKey, opts.Getenv("AWS_ACCESS_KEY_ID")),
		SecretKey:    firstNonEmpty(o.SecretKey, o.LegacySecretKey, args.SecretKey, args.LegacySecretKey, opts.Getenv("AWS_SECRET_ACCESS_KEY")),
		SessionToken: firstNonEmpty(o.SessionToken, args.SessionToken, opts.Getenv("AWS_SESSION_TOKEN")),
		Region:       firstNonEmpty(o.Region, args.Region, opts.Getenv("AWS_REGION"), awsaccount.DefaultRegion),
		CheckMode:    o.CheckMode || args.CheckMode,
	}

	state := firstNonEmpty(o.State, o.LegacyState, args.State, args.LegacyState, string(alias.StatePresent))
	switch alias.State(state) {
	case alias.StatePresent, alias.StateAbsent:
		spec.State = alias.State(state)
	default:
		return Spec{}, &ValidationError{Err: fmt.Errorf("value of state must be one of: %s, %s, got: %s", alias.StatePresent, alias.StateAbsent, state)}
	}

	if spec.AccessKey == "" {
		return Spec{}, &ValidationError{Err: fmt.Errorf("%w: no value available for access_key", ErrMissingCredentials)}
	}
	if spec.SecretKey == "" {
		return Spec{}, &ValidationError{Err: fmt.Errorf("%w: no value available for secret_key", ErrMissingCredentials)}
	}

	return spec, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
