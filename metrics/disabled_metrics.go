// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//
// Copyright 2024 FeatureForm Inc.
//

package metrics

import "context"

type NoOpMetricsHandler struct{}

func (nop *NoOpMetricsHandler) BeginObservingStage(stage string, table string) StageObserver {
	return &NoOpStageObserver{}
}

func (nop *NoOpMetricsHandler) AddUnmatchedEvents(n int)       {}
func (nop *NoOpMetricsHandler) Push(ctx context.Context) error { return nil }

type NoOpStageObserver struct{}

func (nop *NoOpStageObserver) AddRows(n int) {}
func (nop *NoOpStageObserver) SetError()     {}
func (nop *NoOpStageObserver) Finish()       {}
