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

package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"render-toolkit/pkg/config"
	"render-toolkit/pkg/fanout"
	"render-toolkit/pkg/logging"
	"render-toolkit/pkg/slurm"
)

var (
	configFile    string
	dataDir       string
	outputDir     string
	jobsDir       string
	rendererExec  string
	rendererPy    string
	radius        float64
	numImages     int
	splitNames    []string
	submitCommand string
	environment   []string
	dryRun        bool
	checkAssets   bool

	// Resource request options
	partition    string
	nodes        int
	tasksPerNode int
	memPerCPU    string
	qos          string
	account      string
	timeLimit    string
	gpus         int
	excludeNodes []string
	mailType     string
)

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a YAML configuration bundle. Flags override file values.")
	submitCmd.Flags().StringVarP(&dataDir, "data-dir", "d", "", "Root directory containing one subdirectory per object. Required (here or in the config file).")
	submitCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory the renderer writes images and transforms into. Required (here or in the config file).")
	submitCmd.Flags().StringVarP(&jobsDir, "jobs-dir", "j", "", "Directory batch scripts are written to (created if absent).")
	submitCmd.Flags().StringVar(&rendererExec, "renderer-executable", "", "Renderer executable invoked by each job (e.g. 'blender').")
	submitCmd.Flags().StringVar(&rendererPy, "renderer-script", "", "Renderer python script passed to the executable. Required (here or in the config file).")
	submitCmd.Flags().Float64VarP(&radius, "radius", "r", 0, "Camera placement radius passed to the renderer.")
	submitCmd.Flags().IntVarP(&numImages, "num-images", "n", 0, "Number of images each job renders.")
	submitCmd.Flags().StringSliceVar(&splitNames, "splits", nil, "Dataset splits to fan out over (subset of train,test).")
	submitCmd.Flags().StringVar(&submitCommand, "submit-command", "", "Queue-submission command invoked with each script path (default 'sbatch').")
	submitCmd.Flags().StringArrayVar(&environment, "environment", nil, "Environment bootstrap line prepended to each script (repeatable, e.g. 'module load blender/3.6').")
	submitCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Write every batch script but submit nothing.")
	submitCmd.Flags().BoolVar(&checkAssets, "check-assets", false, "Skip objects missing the mesh or texture the renderer requires.")

	submitCmd.Flags().StringVarP(&partition, "partition", "p", "", "SLURM partition to submit to.")
	submitCmd.Flags().IntVar(&nodes, "nodes", 0, "Number of nodes per job.")
	submitCmd.Flags().IntVar(&tasksPerNode, "tasks-per-node", 0, "Tasks per node per job.")
	submitCmd.Flags().StringVar(&memPerCPU, "mem-per-cpu", "", "Memory per CPU (e.g. '8G').")
	submitCmd.Flags().StringVar(&qos, "qos", "", "Quality-of-service tier.")
	submitCmd.Flags().StringVar(&account, "account", "", "Billing account the jobs are charged to.")
	submitCmd.Flags().StringVar(&timeLimit, "time-limit", "", "Wall-clock time limit per job (e.g. '12:00:00').")
	submitCmd.Flags().IntVar(&gpus, "gpus", 0, "Number of GPUs per job.")
	submitCmd.Flags().StringSliceVar(&excludeNodes, "exclude-nodes", nil, "Nodes to exclude from scheduling.")
	submitCmd.Flags().StringVar(&mailType, "mail-type", "", "SLURM mail notification policy (e.g. 'NONE', 'END,FAIL').")
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Generates and submits one render job per (object, split) pair.",
	Long: `The 'submit' command enumerates the immediate subdirectories of the data
directory, crosses them with the configured splits, renders one SLURM batch
script per pair, writes it under the jobs directory, and submits it with the
queue-submission command.

Per-job write and submission failures do not abort the run; they are collected
and reported in a summary at the end. Use --dry-run to generate the scripts
without submitting anything.`,
	Run:          runSubmitCmd,
	SilenceUsage: true,
}

func runSubmitCmd(cmd *cobra.Command, args []string) {
	fsys := afero.NewOsFs()

	cfg, err := buildConfig(cmd, fsys)
	if err != nil {
		logging.Fatal("Invalid configuration: %v", err)
	}

	splits, err := fanout.ParseSplits(cfg.Splits)
	if err != nil {
		logging.Fatal("Invalid configuration: %v", err)
	}

	units, err := fanout.Enumerate(fsys, cfg.DataDir, splits)
	if err != nil {
		logging.Fatal("Failed to enumerate work units: %v", err)
	}
	if len(units) == 0 {
		logging.Warn("No object directories found under %q; nothing to submit.", cfg.DataDir)
		return
	}
	logging.Info("Enumerated %d work units under %q", len(units), cfg.DataDir)

	if checkAssets {
		units, err = filterRenderable(fsys, cfg.DataDir, units)
		if err != nil {
			logging.Fatal("Asset preflight failed: %v", err)
		}
		if len(units) == 0 {
			logging.Warn("No renderable objects left after asset preflight; nothing to submit.")
			return
		}
	}

	generator, err := slurm.NewGenerator(cfg.ScriptOptions())
	if err != nil {
		logging.Fatal("Invalid configuration: %v", err)
	}

	runner := &fanout.Runner{
		FS:        fsys,
		Generator: generator,
		Submitter: slurm.NewSubmitter(cfg.SubmitCommand),
		JobsDir:   cfg.JobsDir,
		DryRun:    dryRun,
	}

	report, err := runner.Run(units)
	if err != nil {
		logging.Fatal("Fanout run failed: %v", err)
	}

	printSummary(report)
	if !report.OK() {
		os.Exit(1)
	}
}

// buildConfig layers the flag values over the config file (if any) over the
// defaults. Only flags the user actually set override file values.
func buildConfig(cmd *cobra.Command, fsys afero.Fs) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		cfg, err = config.Load(fsys, configFile)
		if err != nil {
			return config.Config{}, err
		}
	}

	f := cmd.Flags()
	if f.Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if f.Changed("output-dir") {
		cfg.OutputDir = outputDir
	}
	if f.Changed("jobs-dir") {
		cfg.JobsDir = jobsDir
	}
	if f.Changed("renderer-executable") {
		cfg.Renderer.Executable = rendererExec
	}
	if f.Changed("renderer-script") {
		cfg.Renderer.Script = rendererPy
	}
	if f.Changed("radius") {
		cfg.Renderer.Radius = radius
	}
	if f.Changed("num-images") {
		cfg.Renderer.NumImages = numImages
	}
	if f.Changed("splits") {
		cfg.Splits = splitNames
	}
	if f.Changed("submit-command") {
		cfg.SubmitCommand = submitCommand
	}
	if f.Changed("environment") {
		cfg.Environment = environment
	}
	if f.Changed("partition") {
		cfg.Resources.Partition = partition
	}
	if f.Changed("nodes") {
		cfg.Resources.Nodes = nodes
	}
	if f.Changed("tasks-per-node") {
		cfg.Resources.TasksPerNode = tasksPerNode
	}
	if f.Changed("mem-per-cpu") {
		cfg.Resources.MemPerCPU = memPerCPU
	}
	if f.Changed("qos") {
		cfg.Resources.QOS = qos
	}
	if f.Changed("account") {
		cfg.Resources.Account = account
	}
	if f.Changed("time-limit") {
		cfg.Resources.TimeLimit = timeLimit
	}
	if f.Changed("gpus") {
		cfg.Resources.GPUs = gpus
	}
	if f.Changed("exclude-nodes") {
		cfg.Resources.ExcludeNodes = excludeNodes
	}
	if f.Changed("mail-type") {
		cfg.Resources.MailType = mailType
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// filterRenderable drops units whose object is missing the mesh or texture
// the renderer requires, warning once per object.
func filterRenderable(fsys afero.Fs, dataDir string, units []fanout.WorkUnit) ([]fanout.WorkUnit, error) {
	missingByObject := map[string][]string{}
	var kept []fanout.WorkUnit
	for _, unit := range units {
		missing, checked := missingByObject[unit.Object]
		if !checked {
			var err error
			missing, err = fanout.MissingAssets(fsys, dataDir, unit.Object)
			if err != nil {
				return nil, err
			}
			missingByObject[unit.Object] = missing
			if len(missing) > 0 {
				logging.Warn("Skipping object %q: missing renderer inputs %v", unit.Object, missing)
			}
		}
		if len(missing) == 0 {
			kept = append(kept, unit)
		}
	}
	return kept, nil
}

func printSummary(report fanout.Report) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	for _, res := range report.Results {
		switch {
		case res.Err != nil:
			fmt.Printf("%s  %s: %v\n", red("FAILED"), res.Unit, res.Err)
		case res.JobID != "":
			fmt.Printf("%s  %s -> job %s\n", green("OK"), res.Unit, res.JobID)
		default:
			fmt.Printf("%s  %s -> %s\n", green("OK"), res.Unit, res.ScriptPath)
		}
	}

	failed := len(report.Failed())
	fmt.Printf("\n%d of %d work units completed, %d failed\n",
		len(report.Results)-failed, len(report.Results), failed)
}
