/*
 * MIT License
 *
 * Copyright (c) 2023 EASL and the vHive community
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package common

import (
	"fmt"
	"sort"
)

// RunRecord holds the measurements of one completed benchmark trial.
// Build it with NewRunRecord; nothing downstream mutates a record.
type RunRecord struct {
	ExperimentName string `json:"experiment_name,omitempty"`
	Model          string `json:"model" validate:"required"`
	BatchSize      int    `json:"batch_size" validate:"gt=0"`
	DeviceCount    int    `json:"device_count" validate:"gte=1"`

	// Throughput in images per second, latency in milliseconds per iteration.
	Throughput       float64 `json:"throughput" validate:"gt=0"`
	IterationLatency float64 `json:"iteration_latency" validate:"gt=0"`

	// Optional, one entry per device (ms).
	PerDeviceTimings []float64 `json:"per_device_timings,omitempty" validate:"omitempty,dive,gte=0"`
	// Optional, share of the cycle spent waiting on gradient synchronization.
	SyncWaitFraction *float64 `json:"sync_wait_fraction,omitempty" validate:"omitempty,gte=0,lte=1"`
	// Optional, per-iteration latencies (ms).
	LatencySamples []float64 `json:"latency_samples,omitempty" validate:"omitempty,dive,gt=0"`
}

type GroupKey struct {
	Model     string `json:"model"`
	BatchSize int    `json:"batch_size"`
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%s (batch=%d)", k.Model, k.BatchSize)
}

func (k GroupKey) Less(other GroupKey) bool {
	if k.Model != other.Model {
		return k.Model < other.Model
	}
	return k.BatchSize < other.BatchSize
}

// NewRunRecord validates r and returns a copy that shares no slices with the input.
func NewRunRecord(r RunRecord) (RunRecord, error) {
	record := r
	record.PerDeviceTimings = copyFloats(r.PerDeviceTimings)
	record.LatencySamples = copyFloats(r.LatencySamples)
	if r.SyncWaitFraction != nil {
		fraction := *r.SyncWaitFraction
		record.SyncWaitFraction = &fraction
	}

	if err := ValidateRunRecord(&record); err != nil {
		return RunRecord{}, err
	}

	return record, nil
}

// WithSyncWaitFraction returns a validated copy of r carrying the given fraction.
func (r RunRecord) WithSyncWaitFraction(fraction float64) (RunRecord, error) {
	copied := r
	copied.SyncWaitFraction = &fraction
	return NewRunRecord(copied)
}

func (r RunRecord) Key() GroupKey {
	return GroupKey{Model: r.Model, BatchSize: r.BatchSize}
}

func (r RunRecord) HasDeviceTimings() bool {
	return len(r.PerDeviceTimings) > 0
}

func (r RunRecord) HasSyncWaitFraction() bool {
	return r.SyncWaitFraction != nil
}

func (r RunRecord) String() string {
	return fmt.Sprintf("%s (batch=%d, gpus=%d)", r.Model, r.BatchSize, r.DeviceCount)
}

// SortRunRecords orders records by model, batch size and device count.
func SortRunRecords(records []RunRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Key() != records[j].Key() {
			return records[i].Key().Less(records[j].Key())
		}
		return records[i].DeviceCount < records[j].DeviceCount
	})
}

func DeviceLabel(index int) string {
	return fmt.Sprintf("%s-%d", DevicePrefix, index)
}

func copyFloats(in []float64) []float64 {
	if len(in) == 0 {
		return nil
	}

	out := make([]float64, len(in))
	copy(out, in)
	return out
}
