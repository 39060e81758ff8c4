// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package recipe

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/DataDrake/waterlog"
	"github.com/GZGavinZhao/bitbaker/config"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

const (
	recipeTemplate  = "templates/recipe.bb.tmpl"
	includeTemplate = "templates/recipe.inc.tmpl"
)

type Templates struct {
	Recipe  *template.Template
	Include *template.Template
}

// LoadTemplates parses the built-in templates, replaced by the files named
// in `cfg` when set.
func LoadTemplates(cfg config.TemplateConfig) (t Templates, err error) {
	if t.Recipe, err = loadTemplate(recipeTemplate, cfg.Recipe); err != nil {
		return
	}
	t.Include, err = loadTemplate(includeTemplate, cfg.Include)
	return
}

func loadTemplate(builtin, override string) (*template.Template, error) {
	if override == "" {
		return template.ParseFS(builtinTemplates, builtin)
	}

	waterlog.Debugf("LoadTemplates: using %s instead of the built-in %s\n", override, filepath.Base(builtin))
	tmpl, err := template.ParseFiles(override)
	if err != nil {
		return nil, fmt.Errorf("Failed to parse template %s: %w", override, err)
	}
	return tmpl, nil
}

// Write renders `<name>_<version>.inc` and `<name>_<version>.bb` into `dir`,
// replacing existing files. It returns the paths written.
func (r *Recipe) Write(dir string, t Templates) (paths []string, err error) {
	outputs := []struct {
		path string
		tmpl *template.Template
	}{
		{filepath.Join(dir, r.IncludePath), t.Include},
		{filepath.Join(dir, r.baseName()+".bb"), t.Recipe},
	}

	for _, out := range outputs {
		if err = render(out.path, out.tmpl, r); err != nil {
			return
		}
		waterlog.Goodf("Wrote: %s\n", out.path)
		paths = append(paths, out.path)
	}

	return
}

func render(path string, tmpl *template.Template, r *Recipe) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("Unable to open %s: %w", path, err)
	}
	defer file.Close()

	if err = tmpl.Execute(file, r); err != nil {
		return fmt.Errorf("Unable to write %s: %w", path, err)
	}
	return file.Close()
}
