// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/GZGavinZhao/bitbaker/utils"
	"gopkg.in/yaml.v3"
)

// Names looked up in the package root, in order.
var FileNames = [...]string{"bitbaker.yaml", "bitbaker.yml"}

type BitbakerConfig struct {
	Reproducible    bool           `yaml:"reproducible"`
	LegacyOverrides bool           `yaml:"legacy-overrides"`
	Prune           bool           `yaml:"prune"`
	Ignore          []string       `yaml:"ignore"`
	Registry        RegistryConfig `yaml:"registry"`
	Templates       TemplateConfig `yaml:"templates"`
}

// TemplateConfig points to template files replacing the built-in ones.
// Relative paths are relative to the config file.
type TemplateConfig struct {
	Recipe  string `yaml:"recipe"`
	Include string `yaml:"include"`
}

func Default() BitbakerConfig {
	return BitbakerConfig{Registry: DefaultRegistry()}
}

func (c *BitbakerConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawBitbakerConfig BitbakerConfig
	raw := rawBitbakerConfig(Default())
	if err := value.Decode(&raw); err != nil {
		return err
	}

	*c = BitbakerConfig(raw)
	return nil
}

// IgnorePatterns compiles the `ignore` regexes.
func (c *BitbakerConfig) IgnorePatterns() (res []*regexp.Regexp, err error) {
	for _, ignore := range c.Ignore {
		re, err := regexp.Compile(ignore)
		if err != nil {
			return nil, fmt.Errorf("Invalid ignore pattern %q: %w", ignore, err)
		}
		res = append(res, re)
	}
	return
}

func Load(path string) (cfg BitbakerConfig, err error) {
	raw, err := os.Open(path)
	if err != nil {
		return
	}
	defer raw.Close()

	cfg = Default()
	dec := yaml.NewDecoder(raw)
	if err = dec.Decode(&cfg); errors.Is(err, io.EOF) {
		err = nil
	} else if err != nil {
		err = fmt.Errorf("Failed to decode %s: %w", path, err)
		return
	}

	dir := filepath.Dir(path)
	for _, tmpl := range []*string{&cfg.Templates.Recipe, &cfg.Templates.Include} {
		if *tmpl != "" && !filepath.IsAbs(*tmpl) {
			*tmpl = filepath.Join(dir, *tmpl)
		}
	}

	return
}

// Find loads the first config file found in `dir`, or the defaults when
// there is none.
func Find(dir string) (cfg BitbakerConfig, path string, err error) {
	for _, name := range FileNames {
		path = filepath.Join(dir, name)
		if utils.PathExists(path) {
			cfg, err = Load(path)
			return
		}
	}

	return Default(), "", nil
}
