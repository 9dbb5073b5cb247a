// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package shell

import "testing"

func TestExecuteCommand(t *testing.T) {
	res := ExecuteCommand("sh", "-c", "echo hello")
	if res.ExitCode != 0 {
		t.Fatalf("ExitCode = %d, want 0 (stderr: %s)", res.ExitCode, res.Stderr)
	}
	if res.Stdout != "hello\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hello\n")
	}
}

func TestExecuteCommandNonZeroExit(t *testing.T) {
	res := ExecuteCommand("sh", "-c", "echo oops >&2; exit 3")
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if res.Stderr != "oops\n" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "oops\n")
	}
}

func TestExecuteCommandNotFound(t *testing.T) {
	res := ExecuteCommand("definitely-not-a-real-binary")
	if res.ExitCode == 0 {
		t.Error("ExitCode = 0 for a missing binary, want non-zero")
	}
	if res.Stderr == "" {
		t.Error("Stderr empty for a missing binary, want the launch error")
	}
}
