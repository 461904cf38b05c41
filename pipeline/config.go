// Copyright © 2023 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefConfigFile is the configuration file
// searched in the working directory
// when no file is given.
const DefConfigFile = "treeweaver.yaml"

// A Duration is a time span
// written in the configuration file
// in Go duration syntax,
// such as "90s" or "2h".
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(n *yaml.Node) error {
	v, err := time.ParseDuration(n.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q", n.Value)
	}
	*d = Duration(v)
	return nil
}

// A ToolConfig is the configuration
// of a single external tool.
type ToolConfig struct {
	// Path of the executable.
	// A bare name is searched in the system path.
	Path string `yaml:"path"`

	// Number of threads for the tool.
	// If zero,
	// the number of physical cores
	// of the machine is used.
	Threads int `yaml:"threads"`
}

// Config is the configuration of an analysis pipeline.
// The zero value is not usable;
// start from Default.
type Config struct {
	MAFFT     ToolConfig `yaml:"mafft"`
	IQTree    ToolConfig `yaml:"iqtree"`
	ModelTest ToolConfig `yaml:"modeltest"`
	RAxML     ToolConfig `yaml:"raxml"`

	// Maximum run time of a single tool invocation.
	Timeout Duration `yaml:"timeout"`

	// Seed for the tree inference,
	// so runs are reproducible.
	Seed int64 `yaml:"seed"`

	// Substitution model used for the inference
	// when no model selection was run.
	Model string `yaml:"model"`

	// Number of bootstrap replicates
	// for the tree inference.
	// Zero means no bootstrapping.
	Bootstrap int `yaml:"bootstrap"`

	// Maximum length of the sequence names
	// given to the external tools.
	NameLen int `yaml:"name-length"`

	// Directory for the scoped run directories
	// of the tool invocations.
	// If empty,
	// the system temporary directory is used.
	WorkDir string `yaml:"workdir"`

	// Keep the run directories of successful runs.
	// Directories of failed runs are always kept.
	KeepWorkDir bool `yaml:"keep-workdir"`

	// Path of the run journal database.
	// If empty,
	// runs are not recorded.
	Journal string `yaml:"journal"`

	// Level of the progress log
	// ("debug", "info", "warn", "error", or "off").
	Log string `yaml:"log"`
}

// Default returns the default configuration:
// tools searched in the system path,
// a one hour timeout per tool run,
// and the fixed inference seed.
func Default() Config {
	return Config{
		MAFFT:     ToolConfig{Path: "mafft"},
		IQTree:    ToolConfig{Path: "iqtree"},
		ModelTest: ToolConfig{Path: "modeltest-ng"},
		RAxML:     ToolConfig{Path: "raxml-ng"},
		Timeout:   Duration(time.Hour),
		Seed:      12345,
		Model:     "GTR+G",
		NameLen:   50,
		Log:       "warn",
	}
}

// ReadConfig reads a configuration file in YAML format,
// on top of the default configuration.
// If the name is empty,
// the default configuration file is used
// when present,
// otherwise the defaults are returned.
func ReadConfig(name string) (Config, error) {
	c := Default()

	explicit := name != ""
	if name == "" {
		name = DefConfigFile
	}
	data, err := os.ReadFile(name)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("on file %q: %v", name, err)
	}
	return c, nil
}

// FromEnv overrides the configuration
// with the TREEWEAVER_* environment variables.
// Variables with invalid values are ignored.
func (c *Config) FromEnv() {
	if v := os.Getenv("TREEWEAVER_MAFFT"); v != "" {
		c.MAFFT.Path = v
	}
	if v := os.Getenv("TREEWEAVER_IQTREE"); v != "" {
		c.IQTree.Path = v
	}
	if v := os.Getenv("TREEWEAVER_MODELTEST"); v != "" {
		c.ModelTest.Path = v
	}
	if v := os.Getenv("TREEWEAVER_RAXML"); v != "" {
		c.RAxML.Path = v
	}
	if v := os.Getenv("TREEWEAVER_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MAFFT.Threads = n
			c.IQTree.Threads = n
			c.ModelTest.Threads = n
			c.RAxML.Threads = n
		}
	}
	if v := os.Getenv("TREEWEAVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Timeout = Duration(d)
		}
	}
	if v := os.Getenv("TREEWEAVER_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = n
		}
	}
	if v := os.Getenv("TREEWEAVER_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("TREEWEAVER_BOOTSTRAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Bootstrap = n
		}
	}
	if v := os.Getenv("TREEWEAVER_WORKDIR"); v != "" {
		c.WorkDir = v
	}
	if v := os.Getenv("TREEWEAVER_KEEP_WORKDIR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.KeepWorkDir = b
		}
	}
	if v := os.Getenv("TREEWEAVER_JOURNAL"); v != "" {
		c.Journal = v
	}
	if v := os.Getenv("TREEWEAVER_LOG"); v != "" {
		c.Log = v
	}
}
