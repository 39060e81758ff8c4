// SPDX-FileCopyrightText: Copyright © 2020-2023 Serpent OS Developers
//
// SPDX-License-Identifier: MPL-2.0

package common

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// Index maps package names to their positions in a resolved package set.
type Index struct {
	pkgs   []Package
	byName map[string][]int
}

func NewIndex(pkgs []Package) *Index {
	idx := &Index{pkgs: pkgs, byName: make(map[string][]int)}
	for i, pkg := range pkgs {
		idx.byName[pkg.Name] = append(idx.byName[pkg.Name], i)
	}
	return idx
}

// Lookup resolves a lockfile dependency string (`name`, `name version` or
// `name version (source)`) to the index of the package it refers to.
func (idx *Index) Lookup(dep string) (int, bool) {
	fields := strings.Fields(dep)
	if len(fields) == 0 {
		return -1, false
	}

	candidates := idx.byName[fields[0]]
	if len(fields) > 1 {
		version := fields[1]
		var source string
		if len(fields) > 2 {
			source = strings.TrimSuffix(strings.TrimPrefix(fields[2], "("), ")")
		}

		var matched []int
		for _, i := range candidates {
			if idx.pkgs[i].Version != version {
				continue
			}
			if source != "" && idx.pkgs[i].Source != source {
				continue
			}
			matched = append(matched, i)
		}
		candidates = matched
	}

	if len(candidates) != 1 {
		return -1, false
	}
	return candidates[0], true
}

// BuildDepGraph creates the dependency graph of `pkgs`, with an edge from
// every package to each of its dependencies.
func BuildDepGraph(pkgs []Package, idx *Index) (depGraph graph.Graph[int, int], err error) {
	depGraph = graph.New(graph.IntHash, graph.Directed())

	for pkgIdx, pkg := range pkgs {
		attrsFunc := func(p *graph.VertexProperties) {
			p.Attributes["label"] = pkg.Show(false)
			p.Attributes["style"] = "filled"
			p.Attributes["colorscheme"] = "pastel14"
			switch pkg.Origin.(type) {
			case PathOrigin:
				p.Attributes["fillcolor"] = "1"
			case GitOrigin:
				p.Attributes["fillcolor"] = "2"
			case URLOrigin:
				p.Attributes["fillcolor"] = "3"
			default:
				p.Attributes["fillcolor"] = "4"
			}
		}

		if err = depGraph.AddVertex(pkgIdx, attrsFunc); err != nil {
			err = fmt.Errorf("Failed to add vertex for %s: %w", pkg.Name, err)
			return
		}
	}

	for pkgIdx, pkg := range pkgs {
		for _, dep := range pkg.Dependencies {
			depIdx, found := idx.Lookup(dep)
			if !found || depIdx == pkgIdx {
				continue
			}

			err = depGraph.AddEdge(pkgIdx, depIdx)
			if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				err = fmt.Errorf("Failed to create edge from %s to %s: %w", pkg.Name, dep, err)
				return
			}
			err = nil
		}
	}

	return
}

// WriteDOT writes the dependency graph of `pkgs` in the DOT format.
func WriteDOT(w io.Writer, pkgs []Package) error {
	depGraph, err := BuildDepGraph(pkgs, NewIndex(pkgs))
	if err != nil {
		return err
	}
	return draw.DOT(depGraph, w)
}
