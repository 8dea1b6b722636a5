/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const defaultMaxAttempts = 5

// Config holds the settings parsed from a DynamoDB connection string
type Config struct {
	Region      string
	Table       string
	Endpoint    string
	AccessKey   string
	SecretKey   string
	MaxAttempts int
}

// ParseConnectionString parses "region=...;table=...;endpoint=...;accessKey=...;secretKey=...".
// Keys are case-insensitive; region and table are required.
func ParseConnectionString(conn string) (Config, error) {
	cfg := Config{MaxAttempts: defaultMaxAttempts}
	for _, part := range strings.Split(conn, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return Config{}, fmt.Errorf("dynamodb connection string: malformed segment %q", part)
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "region":
			cfg.Region = value
		case "table":
			cfg.Table = value
		case "endpoint":
			cfg.Endpoint = value
		case "accesskey":
			cfg.AccessKey = value
		case "secretkey":
			cfg.SecretKey = value
		case "maxattempts":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return Config{}, fmt.Errorf("dynamodb connection string: invalid maxAttempts %q", value)
			}
			cfg.MaxAttempts = n
		default:
			return Config{}, fmt.Errorf("dynamodb connection string: unknown key %q", key)
		}
	}
	if cfg.Region == "" {
		return Config{}, fmt.Errorf("dynamodb connection string: region is required")
	}
	if cfg.Table == "" {
		return Config{}, fmt.Errorf("dynamodb connection string: table is required")
	}
	return cfg, nil
}

// Location returns a credential-free description of the target table
func (c Config) Location() string {
	if c.Endpoint != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(c.Endpoint, "/"), c.Table)
	}
	return fmt.Sprintf("dynamodb://%s/%s", c.Region, c.Table)
}

// NewClient initializes a DynamoDB client. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, c Config) (*sdk.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(c.Region),
	}
	if c.AccessKey != "" && c.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}
	if c.MaxAttempts > 0 {
		opts = append(opts, config.WithRetryMaxAttempts(c.MaxAttempts))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
	}), nil
}
