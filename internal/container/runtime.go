// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container runs the markitdown extraction image for docx.Markitdown.
// A document is streamed into a throwaway container on stdin and its text is
// read back from stdout. The container gets no network access.
package container

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

const (
	binDocker = "docker"
	binPodman = "podman"

	// maxStderr caps how much container stderr is kept in an error.
	maxStderr = 2 << 10
)

// Runtime is a local docker or podman installation.
type Runtime interface {
	// Name is the CLI binary in use.
	Name() string

	// Available reports whether the binary is on PATH and its daemon or
	// service answers.
	Available() bool

	// ImageExists returns nil when image is present locally. Images are never
	// pulled implicitly.
	ImageExists(image string) error

	// Run starts image with args, feeds stdin and copies its stdout. The
	// container is removed when it exits.
	Run(image string, args []string, stdin io.Reader, stdout io.Writer) error
}

// executor is the process boundary; tests replace it.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error
}

type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// RunPiped keeps the tail of stderr so a failing extraction reports the
// tool's own message rather than just an exit status.
func (o *osExecutor) RunPiped(name string, args []string, stdin io.Reader, stdout io.Writer) error {
	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if len(msg) > maxStderr {
			msg = msg[len(msg)-maxStderr:]
		}
		if msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// cli drives one container CLI. docker and podman accept the same run
// flags and differ in how a local image is checked.
type cli struct {
	bin        string
	imageCheck []string
	exec       executor
}

func (c *cli) Name() string { return c.bin }

func (c *cli) Available() bool {
	if _, err := c.exec.LookPath(c.bin); err != nil {
		return false
	}
	return c.exec.RunSilent(c.bin, "info") == nil
}

func (c *cli) ImageExists(image string) error {
	args := append(append([]string{}, c.imageCheck...), image)
	if err := c.exec.RunSilent(c.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s (build or pull it first): %w", image, c.bin, err)
	}
	return nil
}

func (c *cli) Run(image string, args []string, stdin io.Reader, stdout io.Writer) error {
	full := append([]string{"run", "--rm", "-i", "--network", "none", image}, args...)
	if err := c.exec.RunPiped(c.bin, full, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", c.bin, image, err)
	}
	return nil
}

func newDockerRuntime(exec executor) *cli {
	return &cli{bin: binDocker, imageCheck: []string{"image", "inspect"}, exec: exec}
}

func newPodmanRuntime(exec executor) *cli {
	return &cli{bin: binPodman, imageCheck: []string{"image", "exists"}, exec: exec}
}

var defaultExec executor = &osExecutor{}

// DetectRuntime returns docker when it answers, otherwise podman.
func DetectRuntime() (Runtime, error) {
	return detectRuntime(defaultExec)
}

func detectRuntime(exec executor) (Runtime, error) {
	for _, c := range []*cli{newDockerRuntime(exec), newPodmanRuntime(exec)} {
		if c.Available() {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no container runtime available: neither %s nor %s found or operational", binDocker, binPodman)
}
