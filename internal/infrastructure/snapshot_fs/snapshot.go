// Package snapshot_fs exports the dashboard tree as JSON for status bars and
// scripts. The file is only ever written.
package snapshot_fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/davarch/ci-dashboard/internal/domain"
)

type FSSnapshot struct {
	path string
}

func New(path string) *FSSnapshot { return &FSSnapshot{path: path} }

type projectOut struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Class     string        `json:"class"`
	Pipelines []pipelineOut `json:"pipelines,omitempty"`
}

type pipelineOut struct {
	ID    string            `json:"id"`
	Class string            `json:"class"`
	Label string            `json:"label,omitempty"`
	Time  string            `json:"time,omitempty"`
	Jobs  []domain.NodeView `json:"jobs,omitempty"`
}

type out struct {
	Retrieved int64        `json:"retrieved"`
	Projects  []projectOut `json:"projects"`
}

// Write replaces the snapshot file. Concurrent cycles may race; the rename
// keeps every reader on a complete file.
func (c *FSSnapshot) Write(_ context.Context, s domain.Snapshot) error {
	if c.path == "" {
		return errors.New("snapshot path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(flatten(s)); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, c.path)
}

func flatten(s domain.Snapshot) out {
	o := out{Retrieved: s.Retrieved, Projects: make([]projectOut, 0, len(s.Nodes))}
	for _, p := range s.Nodes {
		po := projectOut{ID: p.ID, Name: p.Content.Text, Class: p.Class}
		for _, pl := range p.Children {
			plo := pipelineOut{ID: pl.ID, Class: pl.Class}
			for _, c := range pl.Children {
				switch kindOf(c.Class) {
				case domain.KindLabel:
					plo.Label = c.Content.Text
				case domain.KindTime:
					plo.Time = c.Content.Text
				case domain.KindJob:
					plo.Jobs = append(plo.Jobs, c)
				}
			}
			po.Pipelines = append(po.Pipelines, plo)
		}
		o.Projects = append(o.Projects, po)
	}
	return o
}

func kindOf(class string) string {
	kind, _, _ := strings.Cut(class, " ")
	return kind
}
