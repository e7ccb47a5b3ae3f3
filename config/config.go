// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// Copyright 2024 FeatureForm Inc.
//

package config

import (
	"bytes"
	"os"
	"runtime"

	"github.com/featureform/sparkify/fferr"
	"github.com/featureform/sparkify/helpers"
	"github.com/spf13/viper"
)

const (
	ConfigPathEnv     = "SPARKIFY_CONFIG"
	DefaultConfigPath = "dl.cfg"

	// Environment overrides for tuning a single run without editing the file.
	ParallelismEnv  = "SPARKIFY_PARALLELISM"
	StrictSchemaEnv = "SPARKIFY_STRICT_SCHEMA"

	DefaultInputData  = "s3://udacity-dend/"
	DefaultOutputData = "s3://udacity-dend/test_output/"
	DefaultAWSRegion  = "us-west-2"
	DefaultJobName    = "sparkify_etl"
)

type AWSCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	// Endpoint overrides the S3 endpoint, e.g. for MinIO or LocalStack.
	Endpoint string
}

type GCPCredentials struct {
	CredentialsFile string
}

type Credentials struct {
	AWS AWSCredentials
	GCP GCPCredentials
}

type MetricsConfig struct {
	PushgatewayURL string
	JobName        string
}

type Config struct {
	Credentials  Credentials
	InputData    string
	OutputData   string
	Parallelism  int
	StrictSchema bool
	Metrics      MetricsConfig
}

// Path returns the config file location, honouring SPARKIFY_CONFIG.
func Path() string {
	return helpers.GetEnvPath(ConfigPathEnv, DefaultConfigPath)
}

// Load reads an ini-style config file. A missing file, a malformed file or
// missing AWS credentials are all InvalidConfigErrors.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fferr.NewInvalidConfigError(path, err)
	}
	cfg, err := Parse(b)
	if err != nil {
		if typed, ok := fferr.As(err); ok {
			typed.AddDetail("path", path)
		}
		return Config{}, err
	}
	return cfg, nil
}

func Parse(b []byte) (Config, error) {
	v := viper.New()
	v.SetConfigType("ini")
	setDefaults(v)
	if err := v.ReadConfig(bytes.NewReader(b)); err != nil {
		return Config{}, fferr.NewInvalidConfigError("", err)
	}
	cfg := Config{
		Credentials: Credentials{
			AWS: AWSCredentials{
				AccessKeyID:     v.GetString("aws.aws_access_key_id"),
				SecretAccessKey: v.GetString("aws.aws_secret_access_key"),
				Region:          v.GetString("aws.aws_region"),
				Endpoint:        v.GetString("aws.aws_endpoint"),
			},
			GCP: GCPCredentials{
				CredentialsFile: v.GetString("gcp.credentials_file"),
			},
		},
		InputData:    v.GetString("etl.input_data"),
		OutputData:   v.GetString("etl.output_data"),
		Parallelism:  helpers.GetEnvInt(ParallelismEnv, v.GetInt("etl.parallelism")),
		StrictSchema: helpers.GetEnvBool(StrictSchemaEnv, v.GetBool("etl.strict_schema")),
		Metrics: MetricsConfig{
			PushgatewayURL: v.GetString("metrics.pushgateway_url"),
			JobName:        v.GetString("metrics.job_name"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("aws.aws_region", DefaultAWSRegion)
	v.SetDefault("etl.input_data", DefaultInputData)
	v.SetDefault("etl.output_data", DefaultOutputData)
	v.SetDefault("etl.parallelism", runtime.NumCPU())
	v.SetDefault("etl.strict_schema", true)
	v.SetDefault("metrics.job_name", DefaultJobName)
}

func (cfg Config) Validate() error {
	if cfg.Credentials.AWS.AccessKeyID == "" {
		return fferr.NewMissingConfigKey("AWS", "AWS_ACCESS_KEY_ID")
	}
	if cfg.Credentials.AWS.SecretAccessKey == "" {
		return fferr.NewMissingConfigKey("AWS", "AWS_SECRET_ACCESS_KEY")
	}
	if cfg.InputData == "" {
		return fferr.NewMissingConfigKey("ETL", "INPUT_DATA")
	}
	if cfg.OutputData == "" {
		return fferr.NewMissingConfigKey("ETL", "OUTPUT_DATA")
	}
	if cfg.Parallelism < 1 {
		return fferr.NewInvalidConfigValue("ETL.PARALLELISM", cfg.Parallelism, "a positive integer")
	}
	return nil
}
