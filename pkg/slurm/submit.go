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

package slurm

import (
	"fmt"
	"strings"

	"render-toolkit/pkg/logging"
	"render-toolkit/pkg/shell"
)

// DefaultSubmitCommand is the queue-submission command used when none is
// configured.
const DefaultSubmitCommand = "sbatch"

// Submitter submits persisted batch scripts to the SLURM workload manager.
type Submitter struct {
	// Command is the queue-submission binary, invoked with the script path
	// as its sole argument.
	Command string
}

// NewSubmitter returns a Submitter for the given submit command, falling
// back to sbatch when command is empty.
func NewSubmitter(command string) *Submitter {
	if command == "" {
		command = DefaultSubmitCommand
	}
	return &Submitter{Command: command}
}

// Submit hands scriptPath to the queue-submission command and blocks until
// the command returns. It does not wait for the queued job itself. The
// returned job id is best effort; sbatch reports it on stdout but other
// submit commands may not.
func (s *Submitter) Submit(scriptPath string) (string, error) {
	logging.Debug("Submitting batch script %s via %s", scriptPath, s.Command)

	res := shell.ExecuteCommand(s.Command, scriptPath)
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s %s failed with exit code %d: %s\n%s",
			s.Command, scriptPath, res.ExitCode, res.Stderr, res.Stdout)
	}
	return ExtractJobID(res.Stdout), nil
}

// ExtractJobID parses the SLURM job id from sbatch's stdout, which reports
// "Submitted batch job <id>" on success. Returns "" when no id is found.
func ExtractJobID(stdout string) string {
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "Submitted batch job "); ok {
			if fields := strings.Fields(rest); len(fields) > 0 {
				return fields[0]
			}
		}
	}
	return ""
}
