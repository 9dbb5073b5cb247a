// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fanout

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"render-toolkit/pkg/logging"
)

// ScriptGenerator renders the batch-script text for a work unit.
// Rendering must be pure: the same unit and configuration always produce
// byte-identical text.
type ScriptGenerator interface {
	GenerateScript(unit WorkUnit) (string, error)
}

// Submitter hands a persisted script to the external queue manager and
// returns the queue's job identifier when one could be determined.
type Submitter interface {
	Submit(scriptPath string) (jobID string, err error)
}

// Runner executes the fanout over a set of work units: render, persist,
// submit, one unit at a time. Per-unit persist and submit failures are
// collected rather than aborting the run, so one bad unit does not waste
// the scripts prepared for the others.
type Runner struct {
	FS        afero.Fs
	Generator ScriptGenerator
	Submitter Submitter
	JobsDir   string

	// DryRun renders and persists every script but submits nothing.
	DryRun bool
}

// UnitResult records the outcome for a single work unit.
type UnitResult struct {
	Unit       WorkUnit
	ScriptPath string
	JobID      string
	Err        error
}

// Report collects the per-unit outcomes of one fanout run.
type Report struct {
	Results []UnitResult
}

// Failed returns the results whose unit did not complete.
func (r Report) Failed() []UnitResult {
	var failed []UnitResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// OK reports whether every unit completed.
func (r Report) OK() bool { return len(r.Failed()) == 0 }

// Run fans out over units sequentially. Script-generation failures are
// configuration-level and abort the run; everything already recorded is
// returned alongside the error.
func (r *Runner) Run(units []WorkUnit) (Report, error) {
	var report Report

	if err := r.FS.MkdirAll(r.JobsDir, 0755); err != nil {
		return report, fmt.Errorf("failed to create jobs directory %q: %w", r.JobsDir, err)
	}

	for _, unit := range units {
		res := UnitResult{Unit: unit}

		script, err := r.Generator.GenerateScript(unit)
		if err != nil {
			return report, fmt.Errorf("failed to generate script for %s: %w", unit, err)
		}

		res.ScriptPath = filepath.Join(r.JobsDir, unit.ScriptName())
		if err := afero.WriteFile(r.FS, res.ScriptPath, []byte(script), 0755); err != nil {
			res.Err = &PersistError{Unit: unit, Err: err}
			logging.Error("%v", res.Err)
			report.Results = append(report.Results, res)
			continue
		}
		logging.Debug("Wrote batch script %s", res.ScriptPath)

		if r.DryRun {
			logging.Info("Dry run: skipping submission of %s", res.ScriptPath)
			report.Results = append(report.Results, res)
			continue
		}

		jobID, err := r.Submitter.Submit(res.ScriptPath)
		if err != nil {
			res.Err = &SubmitError{Unit: unit, Err: err}
			logging.Error("%v", res.Err)
			report.Results = append(report.Results, res)
			continue
		}
		res.JobID = jobID
		if jobID != "" {
			logging.Info("Submitted %s as job %s", unit, jobID)
		} else {
			logging.Info("Submitted %s", unit)
		}
		report.Results = append(report.Results, res)
	}

	return report, nil
}
