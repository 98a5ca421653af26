// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether RunSilent succeeds
	runPipedFunc  func(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	if m.runPipedFunc != nil {
		return m.runPipedFunc(name, args, stdin, stdout)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "docker on PATH but info fails",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name:    "neither available",
			exec:    &mockExecutor{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(tt.exec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	docker := newDockerRuntime(&mockExecutor{runnableCmds: map[string]bool{"docker image inspect markitdown:latest": true}})
	assert.NoError(t, docker.ImageExists("markitdown:latest"))

	podman := newPodmanRuntime(&mockExecutor{runnableCmds: map[string]bool{"podman image exists markitdown:latest": true}})
	assert.NoError(t, podman.ImageExists("markitdown:latest"))

	missing := newDockerRuntime(&mockExecutor{})
	err := missing.ImageExists("markitdown:latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "markitdown:latest")
}

func TestRun(t *testing.T) {
	var gotName string
	var gotArgs []string
	exec := &mockExecutor{
		runPipedFunc: func(name string, args []string, stdin io.Reader, stdout io.Writer) error {
			gotName, gotArgs = name, args
			data, _ := io.ReadAll(stdin)
			_, _ = stdout.Write([]byte("text of " + string(data)))
			return nil
		},
	}

	var out bytes.Buffer
	err := newPodmanRuntime(exec).Run("markitdown:latest", []string{"-x", "docx"}, strings.NewReader("letter.docx"), &out)
	require.NoError(t, err)

	assert.Equal(t, "podman", gotName)
	assert.Equal(t, []string{"run", "--rm", "-i", "--network", "none", "markitdown:latest", "-x", "docx"}, gotArgs)
	assert.Equal(t, "text of letter.docx", out.String())
}

func TestRun_Failure(t *testing.T) {
	exec := &mockExecutor{
		runPipedFunc: func(string, []string, io.Reader, io.Writer) error {
			return errors.New("container exited with code 1")
		},
	}
	err := newDockerRuntime(exec).Run("markitdown:latest", nil, strings.NewReader(""), io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running docker container markitdown:latest")
}

func TestOSExecutor_RunPipedIncludesStderr(t *testing.T) {
	if _, err := (&osExecutor{}).LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	var out bytes.Buffer
	err := (&osExecutor{}).RunPiped("sh", []string{"-c", "echo partial; echo 'unsupported file' >&2; exit 3"}, strings.NewReader(""), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 3")
	assert.Contains(t, err.Error(), "unsupported file")
	assert.Equal(t, "partial\n", out.String())
}
