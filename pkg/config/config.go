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

// Package config loads and validates the fanout configuration bundle.
// Every path, credential, and resource request comes through here: nothing
// in the toolkit carries a default absolute path or account.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"render-toolkit/pkg/fanout"
	"render-toolkit/pkg/slurm"
)

// Renderer describes the external rendering application each job invokes.
type Renderer struct {
	Executable string  `yaml:"executable"`
	Script     string  `yaml:"script"`
	Radius     float64 `yaml:"radius"`
	NumImages  int     `yaml:"num_images"`
}

// Config is the full configuration bundle for one fanout run.
type Config struct {
	DataDir       string                `yaml:"data_dir"`
	OutputDir     string                `yaml:"output_dir"`
	JobsDir       string                `yaml:"jobs_dir"`
	Renderer      Renderer              `yaml:"renderer"`
	Splits        []string              `yaml:"splits"`
	SubmitCommand string                `yaml:"submit_command"`
	Environment   []string              `yaml:"environment"`
	Resources     slurm.ResourceRequest `yaml:"resources"`
}

// Default returns the configuration defaults applied before a file or flags
// are layered on top.
func Default() Config {
	return Config{
		JobsDir:       "jobs",
		SubmitCommand: slurm.DefaultSubmitCommand,
		Splits:        []string{string(fanout.SplitTrain), string(fanout.SplitTest)},
		Renderer: Renderer{
			Executable: "blender",
			Radius:     2.0,
			NumImages:  100,
		},
		Resources: slurm.ResourceRequest{
			Nodes:        1,
			TasksPerNode: 1,
			MailType:     "NONE",
		},
	}
}

// Load reads a YAML configuration bundle from path, layered over Default().
func Load(fsys afero.Fs, path string) (Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config file %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config file %q", path)
	}
	return cfg, nil
}

// Validate checks the bundle before any work begins.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory must be set")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must be set")
	}
	if c.JobsDir == "" {
		return fmt.Errorf("jobs directory must be set")
	}
	if c.Renderer.Executable == "" {
		return fmt.Errorf("renderer executable must be set")
	}
	if c.Renderer.Script == "" {
		return fmt.Errorf("renderer script must be set")
	}
	if _, err := fanout.ParseSplits(c.Splits); err != nil {
		return err
	}
	opts := c.ScriptOptions()
	return opts.Validate()
}

// ScriptOptions maps the bundle onto the batch-script generation options.
func (c Config) ScriptOptions() slurm.ScriptOptions {
	return slurm.ScriptOptions{
		DataDir:            c.DataDir,
		OutputDir:          c.OutputDir,
		RendererExecutable: c.Renderer.Executable,
		RendererScript:     c.Renderer.Script,
		Radius:             c.Renderer.Radius,
		NumImages:          c.Renderer.NumImages,
		Environment:        c.Environment,
		Resources:          c.Resources,
	}
}
