// Package config loads job files for warden run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Job describes a command to run under supervision.
type Job struct {
	// Command is the argv of the process to run. Required.
	Command []string `yaml:"command"`
	// Dir is the working directory, resolved relative to the job file.
	Dir string `yaml:"dir"`
	// Env holds environment overrides applied on top of the caller's
	// environment. Values are expanded against the caller's environment.
	Env map[string]string `yaml:"env"`
	// Orphan detaches the process to init instead of supervising it.
	Orphan bool `yaml:"orphan"`
}

// Load reads a job file from the provided path.
func Load(path string) (*Job, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve job path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open job file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	var job Job
	if err := decoder.Decode(&job); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", absPath, err)
	}

	if len(job.Command) == 0 {
		return nil, fmt.Errorf("%s: job requires a command", absPath)
	}
	if job.Dir != "" {
		dir := os.ExpandEnv(job.Dir)
		if !filepath.IsAbs(dir) {
			dir = filepath.Clean(filepath.Join(filepath.Dir(absPath), dir))
		}
		job.Dir = dir
	}
	for k, v := range job.Env {
		if k == "" {
			return nil, fmt.Errorf("%s: empty environment variable name", absPath)
		}
		job.Env[k] = os.ExpandEnv(v)
	}
	return &job, nil
}

// Environ returns the job's environment overrides as KEY=VALUE pairs in a
// stable order.
func (j *Job) Environ() []string {
	if len(j.Env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(j.Env))
	for k := range j.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+j.Env[k])
	}
	return env
}

// Validate rechecks invariants on a programmatically constructed job.
func (j *Job) Validate() error {
	if len(j.Command) == 0 {
		return errors.New("config: job requires a command")
	}
	return nil
}
