package framework

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
)

type Framework string

const (
	NestJS  Framework = "NestJS"
	React   Framework = "React"
	Angular Framework = "Angular"
	Express Framework = "Express"
	Unknown Framework = "Unknown"
)

// markers are checked in order; the first dependency present wins.
var markers = []struct {
	dep       string
	framework Framework
}{
	{"@nestjs/core", NestJS},
	{"@angular/core", Angular},
	{"react", React},
	{"express", Express},
}

// SuggestedMaxLines is the default method length limit offered for f.
func (f Framework) SuggestedMaxLines() int {
	switch f {
	case React:
		return 20
	case Express:
		return 30
	default:
		return 40
	}
}

// Project is what is known about a project from its package.json.
type Project struct {
	Root         string
	Name         string
	Framework    Framework
	Dependencies []string
}

type packageJSON struct {
	Name            string            `json:"name"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// HasManifest reports whether dir contains a package.json.
func HasManifest(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, "package.json"))
	return err == nil && !info.IsDir()
}

// Inspect reads root/package.json. A missing or unreadable manifest yields
// an Unknown project rather than an error.
func Inspect(root string) Project {
	p := Project{Root: root, Framework: Unknown}

	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return p
	}
	var manifest packageJSON
	if err := json.Unmarshal(data, &manifest); err != nil {
		return p
	}

	p.Name = manifest.Name
	deps := make(map[string]bool, len(manifest.Dependencies)+len(manifest.DevDependencies))
	for name := range manifest.Dependencies {
		deps[name] = true
	}
	for name := range manifest.DevDependencies {
		deps[name] = true
	}
	for name := range deps {
		p.Dependencies = append(p.Dependencies, name)
	}
	sort.Strings(p.Dependencies)

	for _, m := range markers {
		if deps[m.dep] {
			p.Framework = m.framework
			break
		}
	}
	return p
}

// Detect returns the framework used by the project at root.
func Detect(root string) Framework {
	return Inspect(root).Framework
}
