package alias

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/rs/zerolog"

	"aws-alias/internal/awsaccount"
)

// State is the desired presence of the account alias.
type State string

const (
	StatePresent State = "present"
	StateAbsent  State = "absent"
)

// IAMAPI captures the subset of IAM operations required to manage the account alias.
type IAMAPI interface {
	ListAccountAliases(ctx context.Context, params *iam.ListAccountAliasesInput, optFns ...func(*iam.Options)) (*iam.ListAccountAliasesOutput, error)
	CreateAccountAlias(ctx context.Context, params *iam.CreateAccountAliasInput, optFns ...func(*iam.Options)) (*iam.CreateAccountAliasOutput, error)
	DeleteAccountAlias(ctx context.Context, params *iam.DeleteAccountAliasInput, optFns ...func(*iam.Options)) (*iam.DeleteAccountAliasOutput, error)
}

// STSAPI captures the caller identity lookup.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Desired is the alias configuration requested by the caller. An empty Alias means
// the caller did not ask for any change.
type Desired struct {
	Alias string
	State State
}

// Observed is what the account looked like when the invocation started.
type Observed struct {
	AccountID    string
	CurrentAlias string
}

// Result is reported back to the orchestration host.
type Result struct {
	Changed   bool
	AccountID string
	Alias     string
}

type Reconciler struct {
	IAM    IAMAPI
	STS    STSAPI
	Logger zerolog.Logger
	// DryRun decides as usual but skips the create/delete call.
	DryRun bool
}

func New(cfg aws.Config, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		IAM:    iam.NewFromConfig(cfg),
		STS:    sts.NewFromConfig(cfg),
		Logger: logger,
	}
}

func (r *Reconciler) ResolveAccountID(ctx context.Context) (string, error) {
	resp, err := r.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", remoteErr("get caller identity", err)
	}
	id, err := awsaccount.AccountIDFromARN(aws.ToString(resp.Arn))
	if err != nil {
		return "", remoteErr("get caller identity", err)
	}
	return id, nil
}

// ResolveCurrentAlias returns the first alias on the account, or "" when none is set.
func (r *Reconciler) ResolveCurrentAlias(ctx context.Context) (string, error) {
	resp, err := r.IAM.ListAccountAliases(ctx, &iam.ListAccountAliasesInput{})
	if err != nil {
		return "", remoteErr("list account aliases", err)
	}
	if len(resp.AccountAliases) == 0 {
		return "", nil
	}
	return resp.AccountAliases[0], nil
}

func (r *Reconciler) Create(ctx context.Context, name string) (bool, error) {
	if _, err := r.IAM.CreateAccountAlias(ctx, &iam.CreateAccountAliasInput{AccountAlias: aws.String(name)}); err != nil {
		return false, remoteErr("create account alias", err)
	}
	return true, nil
}

func (r *Reconciler) Delete(ctx context.Context, name string) (bool, error) {
	if _, err := r.IAM.DeleteAccountAlias(ctx, &iam.DeleteAccountAliasInput{AccountAlias: aws.String(name)}); err != nil {
		return false, remoteErr("delete account alias", err)
	}
	return true, nil
}

func (r *Reconciler) Observe(ctx context.Context) (Observed, error) {
	id, err := r.ResolveAccountID(ctx)
	if err != nil {
		return Observed{}, err
	}
	current, err := r.ResolveCurrentAlias(ctx)
	if err != nil {
		return Observed{}, err
	}
	return Observed{AccountID: id, CurrentAlias: current}, nil
}

// Reconcile converges the account alias towards desired with at most one mutating
// call. Errors are returned as-is; nothing is retried.
func (r *Reconciler) Reconcile(ctx context.Context, desired Desired) (Result, error) {
	if r.IAM == nil || r.STS == nil {
		return Result{}, errors.New("reconciler clients must not be nil")
	}

	obs, err := r.Observe(ctx)
	if err != nil {
		return Result{}, err
	}
	log := r.Logger.With().
		Str("account_id", obs.AccountID).
		Str("current_alias", obs.CurrentAlias).
		Str("desired_alias", desired.Alias).
		Str("state", string(desired.State)).
		Logger()

	res := Result{AccountID: obs.AccountID, Alias: obs.CurrentAlias}

	switch {
	case desired.Alias == "":
		log.Debug().Msg("no alias requested")

	case desired.Alias != obs.CurrentAlias && desired.State == StatePresent:
		log.Info().Bool("dry_run", r.DryRun).Msg("creating account alias")
		if !r.DryRun {
			if _, err := r.Create(ctx, desired.Alias); err != nil {
				return Result{}, err
			}
		}
		res.Changed = true
		res.Alias = desired.Alias

	case desired.Alias == obs.CurrentAlias && desired.State == StateAbsent:
		log.Info().Bool("dry_run", r.DryRun).Msg("deleting account alias")
		if r.DryRun {
			res.Changed = true
			res.Alias = ""
			break
		}
		if _, err := r.Delete(ctx, obs.CurrentAlias); err != nil {
			return Result{}, err
		}
		res.Changed = true
		current, err := r.ResolveCurrentAlias(ctx)
		if err != nil {
			return Result{}, err
		}
		res.Alias = current

	default:
		log.Debug().Msg("account alias already converged")
	}

	return res, nil
}
