// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package config

import (
	"net/url"
)

const (
	DefaultScheme = "crate"
	CratesIO      = "crates.io"
)

type RegistryConfig struct {
	// Scheme of the fetch lines of registry packages.
	Scheme string `yaml:"scheme"`
	// Indexes maps a registry URL to the index name used in fetch lines.
	// Keys are bare URLs, also for sparse registries.
	Indexes map[string]string `yaml:"indexes"`
}

func DefaultRegistry() RegistryConfig {
	return RegistryConfig{Scheme: DefaultScheme}
}

var cratesIOIndexes = [...]string{
	"https://github.com/rust-lang/crates.io-index",
	"https://index.crates.io/",
}

// IndexName returns the name of the registry at `url`. Unknown registries
// are named after their host.
func (r RegistryConfig) IndexName(registry string) string {
	if name, ok := r.Indexes[registry]; ok {
		return name
	}

	for _, known := range cratesIOIndexes {
		if registry == known {
			return CratesIO
		}
	}

	u, err := url.Parse(registry)
	if err != nil || u.Host == "" {
		return registry
	}
	return u.Host
}
