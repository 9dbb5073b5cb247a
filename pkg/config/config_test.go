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

package config

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

const testBundle = `
data_dir: /scratch/objects
output_dir: /scratch/renders
jobs_dir: /scratch/jobs
renderer:
  executable: blender
  script: render_with_intrinsics.py
  radius: 1.5
  num_images: 64
splits: [train, test]
submit_command: sbatch
environment:
  - module load blender/3.6
resources:
  partition: gpu
  nodes: 1
  tasks_per_node: 1
  mem_per_cpu: 8G
  qos: normal
  account: render-lab
  time_limit: "12:00:00"
  gpus: 1
  exclude_nodes: [node013]
  mail_type: END,FAIL
`

func TestLoad(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/etc/rcluster.yaml", []byte(testBundle), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(fsys, "/etc/rcluster.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed on a complete bundle: %v", err)
	}

	if cfg.DataDir != "/scratch/objects" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "/scratch/objects")
	}
	if cfg.Renderer.Radius != 1.5 {
		t.Errorf("Renderer.Radius = %v, want 1.5", cfg.Renderer.Radius)
	}
	if cfg.Resources.Partition != "gpu" {
		t.Errorf("Resources.Partition = %q, want %q", cfg.Resources.Partition, "gpu")
	}
	if diff := cmp.Diff([]string{"node013"}, cfg.Resources.ExcludeNodes); diff != "" {
		t.Errorf("Resources.ExcludeNodes mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	fsys := afero.NewMemMapFs()
	minimal := `
data_dir: /scratch/objects
output_dir: /scratch/renders
renderer:
  script: render_with_intrinsics.py
resources:
  partition: gpu
  mem_per_cpu: 8G
  time_limit: "04:00:00"
`
	if err := afero.WriteFile(fsys, "/etc/rcluster.yaml", []byte(minimal), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(fsys, "/etc/rcluster.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed on a minimal bundle: %v", err)
	}

	if cfg.JobsDir != "jobs" {
		t.Errorf("JobsDir = %q, want default %q", cfg.JobsDir, "jobs")
	}
	if cfg.SubmitCommand != "sbatch" {
		t.Errorf("SubmitCommand = %q, want default %q", cfg.SubmitCommand, "sbatch")
	}
	if cfg.Renderer.Executable != "blender" {
		t.Errorf("Renderer.Executable = %q, want default %q", cfg.Renderer.Executable, "blender")
	}
	if diff := cmp.Diff([]string{"train", "test"}, cfg.Splits); diff != "" {
		t.Errorf("Splits mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if _, err := Load(fsys, "/missing.yaml"); err == nil {
		t.Fatal("Load of a missing file succeeded, want error")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/bad.yaml", []byte("data_dir: [unclosed"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(fsys, "/bad.yaml"); err == nil {
		t.Fatal("Load of malformed YAML succeeded, want error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.DataDir = "/scratch/objects"
		cfg.OutputDir = "/scratch/renders"
		cfg.Renderer.Script = "render_with_intrinsics.py"
		cfg.Resources.Partition = "gpu"
		cfg.Resources.MemPerCPU = "8G"
		cfg.Resources.TimeLimit = "12:00:00"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing data dir", func(c *Config) { c.DataDir = "" }, "data directory"},
		{"missing output dir", func(c *Config) { c.OutputDir = "" }, "output directory"},
		{"missing jobs dir", func(c *Config) { c.JobsDir = "" }, "jobs directory"},
		{"missing renderer script", func(c *Config) { c.Renderer.Script = "" }, "renderer script"},
		{"unknown split", func(c *Config) { c.Splits = []string{"val"} }, "unknown split"},
		{"empty splits", func(c *Config) { c.Splits = nil }, "at least one split"},
		{"non-positive radius", func(c *Config) { c.Renderer.Radius = -1 }, "radius"},
		{"missing partition", func(c *Config) { c.Resources.Partition = "" }, "partition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
