// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// Copyright 2024 FeatureForm Inc.
//

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/featureform/sparkify/config"
	"github.com/featureform/sparkify/fferr"
	"github.com/featureform/sparkify/logging"
	"github.com/featureform/sparkify/metrics"
	"github.com/featureform/sparkify/pipeline"
	"github.com/joho/godotenv"
)

func main() {
	logger := logging.NewLogger("sparkify")
	defer logger.Sync()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warnw("Could not load .env", "error", err)
	}

	path := config.Path()
	logger.Infow("Reading config", "path", path)
	cfg, err := config.Load(path)
	if err != nil {
		exit(logger, "Invalid config", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewMetrics(cfg.Metrics)
	if _, err := pipeline.Run(ctx, cfg, logger, m); err != nil {
		stop()
		exit(logger, "Sparkify ETL failed", err)
	}
}

func exit(logger logging.Logger, msg string, err error) {
	if typed, ok := fferr.As(err); ok {
		logger.Errorw(msg, "type", typed.GetType(), "error", err, "stack", typed.Stack())
	} else {
		logger.Errorw(msg, "error", err)
	}
	logger.Sync()
	os.Exit(1)
}
