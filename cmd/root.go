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
	"os"

	"github.com/spf13/cobra"

	"render-toolkit/pkg/logging"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "rcluster",
	Short: "rcluster fans batch-rendering jobs out to a SLURM cluster.",
	Long: `rcluster generates one SLURM batch script per (object, split) pair found
under a data directory and submits each script with sbatch. Every job invokes
the external Blender renderer with the object's name, split, and render
parameters; the cluster scheduler runs the actual rendering in parallel.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
