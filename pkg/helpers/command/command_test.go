// Zaparoo USB Observer
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo USB Observer.
//
// Zaparoo USB Observer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo USB Observer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo USB Observer.  If not, see <http://www.gnu.org/licenses/>.

package command

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
}

func TestRealExecutor_Output(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	executor := &RealExecutor{}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		out, err := executor.Output(context.Background(), "echo", "%d/%m/%Y")
		require.NoError(t, err)
		assert.Equal(t, "%d/%m/%Y\n", string(out))
	})

	t.Run("non-zero exit", func(t *testing.T) {
		t.Parallel()
		_, err := executor.Output(context.Background(), "false")
		var exitErr *exec.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.ExitCode())
		assert.Contains(t, err.Error(), "false: ")
	})

	t.Run("missing binary", func(t *testing.T) {
		t.Parallel()
		_, err := executor.Output(context.Background(), "nonexistent_command_that_should_not_exist_12345")
		require.Error(t, err)
		assert.True(t, errors.Is(err, exec.ErrNotFound))
	})
}

func TestRealExecutor_OutputTimeout(t *testing.T) {
	t.Parallel()
	skipWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := (&RealExecutor{}).Output(ctx, "sleep", "5")
	require.Error(t, err)
}

func TestExecutor_Interface(t *testing.T) {
	t.Parallel()

	var _ Executor = (*RealExecutor)(nil)
}
