package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"aws-alias/internal/alias"
	"aws-alias/internal/awsaccount"
	"aws-alias/internal/logging"
	"aws-alias/internal/output"
	"aws-alias/internal/params"
)

var aliasVersion = "dev-1"

type rootFlags struct {
	alias        string
	state        string
	accessKey    string
	secretKey    string
	sessionToken string
	region       string
	check        bool
	logLevel     string
	logFormat    string
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "aws-alias [ARGS_FILE]",
		Short:         "Ensure the AWS account alias matches the desired state",
		Version:       aliasVersion,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			reporter := output.NewReporter(cmd.OutOrStdout())
			if err := run(cmd, args, flags, reporter); err != nil {
				return reporter.Fail(err)
			}
			return nil
		},
	}

	cmd.SetVersionTemplate("aws-alias version {{.Version}}\n")
	cmd.Flags().StringVar(&flags.alias, "alias", "", "desired account alias")
	cmd.Flags().StringVar(&flags.state, "state", "", "desired alias state: present or absent (default present)")
	cmd.Flags().StringVar(&flags.accessKey, "access-key", "", "AWS access key (defaults to AWS_ACCESS_KEY_ID)")
	cmd.Flags().StringVar(&flags.secretKey, "secret-key", "", "AWS secret key (defaults to AWS_SECRET_ACCESS_KEY)")
	cmd.Flags().StringVar(&flags.sessionToken, "session-token", "", "AWS session token (defaults to AWS_SESSION_TOKEN)")
	cmd.Flags().StringVar(&flags.region, "region", "", "AWS region used for STS (default us-east-1)")
	cmd.Flags().BoolVar(&flags.check, "check", false, "report what would change without changing it")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", envOr("AWS_ALIAS_LOG_LEVEL", "warn"), "log level written to stderr")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", envOr("AWS_ALIAS_LOG_FORMAT", "json"), "log format: json or console")

	return cmd
}

func Execute() error {
	return newRootCommand().Execute()
}

func run(cmd *cobra.Command, args []string, flags rootFlags, reporter *output.Reporter) error {
	ctx := cmd.Context()

	logger, err := logging.New(cmd.ErrOrStderr(), logging.Config{Level: flags.logLevel, Format: flags.logFormat})
	if err != nil {
		return err
	}

	var raw params.Args
	if len(args) == 1 {
		raw, err = params.LoadFile(args[0])
		if err != nil {
			return err
		}
	}

	spec, err := params.Resolve(raw, params.Options{Overrides: flags.args()})
	if err != nil {
		return err
	}
	logger.Debug().
		Str("alias", spec.Alias).
		Str("state", string(spec.State)).
		Str("region", spec.Region).
		Bool("check_mode", spec.CheckMode).
		Msg("resolved parameters")

	cfg, err := awsaccount.LoadConfig(ctx, spec.Region, spec.Credentials())
	if err != nil {
		return err
	}

	r := alias.New(cfg, logger)
	r.DryRun = spec.CheckMode

	res, err := r.Reconcile(ctx, spec.Desired())
	if err != nil {
		logFailure(logger, err)
		return err
	}
	logger.Info().
		Bool("changed", res.Changed).
		Str("account_id", res.AccountID).
		Str("alias", res.Alias).
		Msg("reconciled account alias")

	if err := reporter.Exit(res, spec.CheckMode); err != nil {
		return fmt.Errorf("report result: %w", err)
	}
	return nil
}

func (f rootFlags) args() params.Args {
	return params.Args{
		Alias:        f.alias,
		State:        f.state,
		AccessKey:    f.accessKey,
		SecretKey:    f.secretKey,
		SessionToken: f.sessionToken,
		Region:       f.region,
		CheckMode:    f.check,
	}
}
