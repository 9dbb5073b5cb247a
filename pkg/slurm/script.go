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

// Package slurm renders SLURM batch scripts for render work units and
// submits them through sbatch.
package slurm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"render-toolkit/pkg/fanout"
)

// BatchScriptTemplate is the Go template for generating a SLURM batch script.
// The script carries the resource-request header, the environment bootstrap
// block, and exactly one renderer invocation.
const BatchScriptTemplate = `#!/bin/bash
#SBATCH --job-name={{.Object}}_{{.Split}}
#SBATCH --partition={{.Partition}}
#SBATCH --nodes={{.Nodes}}
#SBATCH --ntasks-per-node={{.TasksPerNode}}
#SBATCH --mem-per-cpu={{.MemPerCPU}}
#SBATCH --time={{.TimeLimit}}
{{- if .QOS}}
#SBATCH --qos={{.QOS}}
{{- end}}
{{- if .Account}}
#SBATCH --account={{.Account}}
{{- end}}
{{- if .GPUs}}
#SBATCH --gres=gpu:{{.GPUs}}
{{- end}}
{{- if .ExcludeList}}
#SBATCH --exclude={{.ExcludeList}}
{{- end}}
#SBATCH --mail-type={{.MailType}}
#SBATCH --output=%x_%j.out
#SBATCH --error=%x_%j.err
{{range .Environment}}
{{.}}
{{- end}}

{{.RendererExecutable}} --background --python {{.RendererScript}} -- --data_dir "{{.DataDir}}" --name "{{.Object}}" --output_dir "{{.OutputDir}}" --split {{.Split}} --radius {{.Radius}} --num {{.NumImages}}
`

// ResourceRequest holds the SLURM resource directives embedded in the batch
// script header.
type ResourceRequest struct {
	Partition    string   `yaml:"partition"`
	Nodes        int      `yaml:"nodes"`
	TasksPerNode int      `yaml:"tasks_per_node"`
	MemPerCPU    string   `yaml:"mem_per_cpu"`
	QOS          string   `yaml:"qos"`
	Account      string   `yaml:"account"`
	TimeLimit    string   `yaml:"time_limit"`
	GPUs         int      `yaml:"gpus"`
	ExcludeNodes []string `yaml:"exclude_nodes"`
	MailType     string   `yaml:"mail_type"`
}

// ScriptOptions holds the per-run parameters for batch-script generation.
// Everything here is fixed across the fanout; only the work unit varies.
type ScriptOptions struct {
	DataDir            string
	OutputDir          string
	RendererExecutable string
	RendererScript     string
	Radius             float64
	NumImages          int
	Environment        []string
	Resources          ResourceRequest
}

// Validate checks that every placeholder the template binds has a usable
// value. An unbound placeholder is a configuration error, caught here
// before any script is written.
func (opts ScriptOptions) Validate() error {
	required := []struct {
		name, value string
	}{
		{"data directory", opts.DataDir},
		{"output directory", opts.OutputDir},
		{"renderer executable", opts.RendererExecutable},
		{"renderer script", opts.RendererScript},
		{"partition", opts.Resources.Partition},
		{"mem-per-cpu", opts.Resources.MemPerCPU},
		{"time limit", opts.Resources.TimeLimit},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%s must be set", r.name)
		}
	}
	if opts.Radius <= 0 {
		return fmt.Errorf("radius must be positive, got %v", opts.Radius)
	}
	if opts.NumImages <= 0 {
		return fmt.Errorf("number of images must be positive, got %d", opts.NumImages)
	}
	return nil
}

// Generator binds ScriptOptions into a fanout.ScriptGenerator.
type Generator struct {
	opts ScriptOptions
}

// NewGenerator validates opts and returns a Generator for them.
func NewGenerator(opts ScriptOptions) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid script options: %w", err)
	}
	return &Generator{opts: opts}, nil
}

// GenerateScript renders the batch script for a work unit.
func (g *Generator) GenerateScript(unit fanout.WorkUnit) (string, error) {
	return GenerateBatchScript(unit, g.opts)
}

// GenerateBatchScript generates the SLURM batch-script content for one work
// unit. Rendering is pure: the same unit and options always produce
// byte-identical text.
func GenerateBatchScript(unit fanout.WorkUnit, opts ScriptOptions) (string, error) {
	nodes := opts.Resources.Nodes
	if nodes == 0 {
		nodes = 1
	}
	tasksPerNode := opts.Resources.TasksPerNode
	if tasksPerNode == 0 {
		tasksPerNode = 1
	}
	mailType := opts.Resources.MailType
	if mailType == "" {
		mailType = "NONE"
	}

	tmpl, err := template.New("batchScript").Option("missingkey=error").Parse(BatchScriptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse batch script template: %w", err)
	}

	data := struct {
		Object             string
		Split              fanout.Split
		Partition          string
		Nodes              int
		TasksPerNode       int
		MemPerCPU          string
		TimeLimit          string
		QOS                string
		Account            string
		GPUs               int
		ExcludeList        string
		MailType           string
		Environment        []string
		RendererExecutable string
		RendererScript     string
		DataDir            string
		OutputDir          string
		Radius             float64
		NumImages          int
	}{
		Object:             unit.Object,
		Split:              unit.Split,
		Partition:          opts.Resources.Partition,
		Nodes:              nodes,
		TasksPerNode:       tasksPerNode,
		MemPerCPU:          opts.Resources.MemPerCPU,
		TimeLimit:          opts.Resources.TimeLimit,
		QOS:                opts.Resources.QOS,
		Account:            opts.Resources.Account,
		GPUs:               opts.Resources.GPUs,
		ExcludeList:        strings.Join(opts.Resources.ExcludeNodes, ","),
		MailType:           mailType,
		Environment:        opts.Environment,
		RendererExecutable: opts.RendererExecutable,
		RendererScript:     opts.RendererScript,
		DataDir:            opts.DataDir,
		OutputDir:          opts.OutputDir,
		Radius:             opts.Radius,
		NumImages:          opts.NumImages,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute batch script template: %w", err)
	}
	return buf.String(), nil
}
