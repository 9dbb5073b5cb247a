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

// Package fanout enumerates render work units and drives the
// render-persist-submit loop over them.
package fanout

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"render-toolkit/pkg/logging"
)

// Split is a dataset partition tag.
type Split string

const (
	SplitTrain Split = "train"
	SplitTest  Split = "test"
)

// Splits lists the recognized splits in declaration order.
var Splits = []Split{SplitTrain, SplitTest}

// ParseSplits converts raw split names into Split values, rejecting
// duplicates and anything outside the recognized set.
func ParseSplits(names []string) ([]Split, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one split is required")
	}
	seen := map[Split]bool{}
	var splits []Split
	for _, name := range names {
		s := Split(name)
		if s != SplitTrain && s != SplitTest {
			return nil, fmt.Errorf("unknown split %q (expected %q or %q)", name, SplitTrain, SplitTest)
		}
		if seen[s] {
			return nil, fmt.Errorf("split %q listed more than once", name)
		}
		seen[s] = true
		splits = append(splits, s)
	}
	return splits, nil
}

// WorkUnit identifies one render job: a single object directory crossed with
// a single split. Immutable once enumerated.
type WorkUnit struct {
	Object string
	Split  Split
}

func (u WorkUnit) String() string {
	return fmt.Sprintf("(%s, %s)", u.Object, u.Split)
}

// ScriptName returns the batch-script file name for the unit.
func (u WorkUnit) ScriptName() string {
	return fmt.Sprintf("job_%s_%s.sh", u.Object, u.Split)
}

// Enumerate lists the immediate subdirectories of dataDir and crosses them
// with splits, in directory listing order then split declaration order.
// Non-directory entries under dataDir are skipped; the renderer only
// understands per-object directories, so stray files are never fanned out.
func Enumerate(fsys afero.Fs, dataDir string, splits []Split) ([]WorkUnit, error) {
	entries, err := afero.ReadDir(fsys, dataDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read data directory %q", dataDir)
	}

	var units []WorkUnit
	for _, entry := range entries {
		if !entry.IsDir() {
			logging.Debug("Skipping non-directory entry %q under %q", entry.Name(), dataDir)
			continue
		}
		for _, split := range splits {
			units = append(units, WorkUnit{Object: entry.Name(), Split: split})
		}
	}
	return units, nil
}

// AssetPaths returns the mesh and texture paths the renderer expects for an
// object, relative to the per-object layout under dataDir.
func AssetPaths(dataDir, object string) (mesh, texture string) {
	mesh = filepath.Join(dataDir, object, "meshes", "model.obj")
	texture = filepath.Join(dataDir, object, "materials", "textures", "texture.png")
	return mesh, texture
}

// MissingAssets reports which of the renderer's required input files are
// absent for an object. The renderer hard-fails on either one missing, so
// callers can use this as a preflight check before queueing jobs.
func MissingAssets(fsys afero.Fs, dataDir, object string) ([]string, error) {
	mesh, texture := AssetPaths(dataDir, object)

	var missing []string
	for _, path := range []string{mesh, texture} {
		exists, err := afero.Exists(fsys, path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to stat %q", path)
		}
		if !exists {
			missing = append(missing, path)
		}
	}
	return missing, nil
}
