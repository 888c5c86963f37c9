package awsaccount

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// DefaultRegion is used when no region is configured. IAM is a global service, so
// the region only selects the STS endpoint.
const DefaultRegion = "us-east-1"

// Credentials are the static keys supplied by the caller.
type Credentials struct {
	AccessKey    string
	SecretKey    string
	SessionToken string
}

// LoadConfig builds an AWS config pinned to the given static credentials.
func LoadConfig(ctx context.Context, region string, creds Credentials) (aws.Config, error) {
	if creds.AccessKey == "" || creds.SecretKey == "" {
		return aws.Config{}, fmt.Errorf("load AWS config: access key and secret key are required")
	}
	if region == "" {
		region = DefaultRegion
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKey, creds.SecretKey, creds.SessionToken),
		),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return cfg, nil
}

// AccountIDFromARN returns the account segment of an identity ARN such as
// arn:aws:iam::123456789012:user/x.
func AccountIDFromARN(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("caller identity returned empty arn")
	}
	parsed, err := arn.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse identity arn %q: %w", raw, err)
	}
	if parsed.AccountID == "" {
		return "", fmt.Errorf("identity arn %q has no account id", raw)
	}
	return parsed.AccountID, nil
}
