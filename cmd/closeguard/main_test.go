// Copyright 2026 Oliver Eikemeier. All Rights Reserved.
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
//
// SPDX-License-Identifier: Apache-2.0

package main_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var binaryPath string

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

func run(m *testing.M) int {
	if _, err := exec.LookPath("go"); err != nil {
		return m.Run()
	}

	tmpDir, err := os.MkdirTemp("", "closeguard-e2e-*")
	if err != nil {
		panic(err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	binaryPath = filepath.Join(tmpDir, "closeguard")

	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		panic(string(out) + ": " + err.Error())
	}

	return m.Run()
}

func closeguard(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	if binaryPath == "" {
		t.Skip("go command not available")
	}

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()

	return string(out), err
}

func TestLeak(t *testing.T) {
	t.Parallel()

	out, err := closeguard(t, filepath.Join("testdata", "leak"), "./...")
	if err == nil {
		t.Fatal("Expected non-zero exit code for code with leaks")
	}

	if want := "Variable 'f' holds closer from call that is never closed (cg:var)"; !strings.Contains(out, want) {
		t.Errorf("Expected %q in output, got:\n%s", want, out)
	}

	if !strings.Contains(out, "leak.go:") {
		t.Errorf("Expected file location in output, got:\n%s", out)
	}
}

func TestIgnoredType(t *testing.T) {
	t.Parallel()

	out, err := closeguard(t, filepath.Join("testdata", "leak"), "-ignored-types=os.File", "./...")
	if err != nil {
		t.Errorf("Expected zero exit code with os.File ignored, got %v:\n%s", err, out)
	}
}

func TestHelpFlag(t *testing.T) {
	t.Parallel()

	out, _ := closeguard(t, ".", "-help")

	for _, flag := range []string{"-generated", "-tracking", "-rules", "-ignored-types", "-ignored-functions", "-tracking-methods", "-dispose-methods"} {
		if !strings.Contains(out, flag) {
			t.Errorf("Expected flag %q in help output, got:\n%s", flag, out)
		}
	}
}
