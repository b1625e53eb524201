package buildkit

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/cartforge/cartforge"
)

// Project identifies one native project file to build against: its path
// and whether it's a workspace (aggregating several projects) or a bare
// project file.
type Project struct {
	Path        string
	IsWorkspace bool
}

const (
	workspaceExt = ".xcworkspace"
	projectExt   = ".xcodeproj"
)

// LocateProject finds the native project file(s) under root and returns the
// authoritative candidate: workspace variants sort before project-file
// variants, then by ascending directory depth, then lexicographically by
// path.
func LocateProject(root string) (Project, error) {
	var candidates []Project
	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			switch filepath.Ext(path) {
			case workspaceExt:
				candidates = append(candidates, Project{Path: path, IsWorkspace: true})
				return filepath.SkipDir
			case projectExt:
				candidates = append(candidates, Project{Path: path, IsWorkspace: false})
				return filepath.SkipDir
			}
			return nil
		},
	})
	if err != nil {
		return Project{}, cartforge.Wrap(err, cartforge.ReadFailed, "walking %s for a native project", root)
	}
	if len(candidates) == 0 {
		return Project{}, cartforge.New(cartforge.MissingBuildSetting, "no buildable project found under %s", root)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.IsWorkspace != b.IsWorkspace {
			return a.IsWorkspace
		}
		da, db := depth(a.Path), depth(b.Path)
		if da != db {
			return da < db
		}
		return a.Path < b.Path
	})
	return candidates[0], nil
}

func depth(path string) int {
	return strings.Count(filepath.Clean(path), string(filepath.Separator))
}

// flag returns the command-line flag the native build tool uses to select
// this project ("-workspace" or "-project").
func (p Project) flag() string {
	if p.IsWorkspace {
		return "-workspace"
	}
	return "-project"
}
