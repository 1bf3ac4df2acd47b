package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"slidemovie/internal/config"
	"slidemovie/internal/services"
	"slidemovie/internal/textutil"
)

const (
	stateFileName  = "status.json"
	reportFileName = "video_length.csv"
	lockFileName   = ".slidemovie.lock"
	defaultRootDir = "movie"
)

// Request describes the project the operator asked for.
type Request struct {
	// Name is the project name. For nested projects it is the parent name.
	Name string
	// SourceDir holds the narration source. Empty means the working directory.
	SourceDir string
	// Sub selects a nested child project inside SourceDir.
	Sub string
	// OutputRoot is the explicit artifact root from the command line.
	OutputRoot string
	// ConfigRoot is the artifact root from configuration.
	ConfigRoot string
	// Filename overrides the final video base name.
	Filename string
	// ReadOnly resolves paths without creating artifact directories.
	ReadOnly bool
}

// Layout is the resolved set of paths for one project.
type Layout struct {
	ProjectID   string
	SourceDir   string
	OutputRoot  string
	Narration   string
	Deck        string
	ArtifactDir string
	StateFile   string
	LockFile    string
	ReportFile  string
	VideoFile   string
}

// Artifact returns the path of name inside the artifact directory.
func (l Layout) Artifact(name string) string {
	return filepath.Join(l.ArtifactDir, name)
}

// Resolve computes the layout for req. The output root must already exist;
// artifact directories below it are created unless req.ReadOnly is set.
func Resolve(req Request) (Layout, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Layout{}, services.Wrap(services.ErrConfiguration, "project", "resolve", "project name is required", nil)
	}
	if strings.ContainsRune(name, filepath.Separator) {
		return Layout{}, services.Wrap(services.ErrConfiguration, "project", "resolve", fmt.Sprintf("project name %q must not contain path separators", name), nil)
	}
	sub := strings.TrimSpace(req.Sub)
	if strings.ContainsRune(sub, filepath.Separator) {
		return Layout{}, services.Wrap(services.ErrConfiguration, "project", "resolve", fmt.Sprintf("subproject name %q must not contain path separators", sub), nil)
	}

	sourceParent, err := absSource(req.SourceDir)
	if err != nil {
		return Layout{}, err
	}
	root, err := outputRoot(req, sourceParent)
	if err != nil {
		return Layout{}, err
	}

	layout := Layout{OutputRoot: root}
	stem := name
	if sub == "" {
		layout.ProjectID = name
		layout.SourceDir = sourceParent
		layout.ArtifactDir = filepath.Join(root, name)
	} else {
		stem = sub
		layout.ProjectID = name + "-" + sub
		layout.SourceDir = filepath.Join(sourceParent, sub)
		layout.ArtifactDir = filepath.Join(root, name, sub)
	}
	layout.Narration = filepath.Join(layout.SourceDir, stem+".md")
	layout.Deck = filepath.Join(layout.SourceDir, stem+".pptx")
	layout.StateFile = filepath.Join(layout.SourceDir, stateFileName)
	layout.ReportFile = filepath.Join(layout.SourceDir, reportFileName)
	layout.LockFile = layout.Artifact(lockFileName)

	base := textutil.VideoBaseName(req.Filename)
	if base == "" {
		base = layout.ProjectID
	}
	layout.VideoFile = filepath.Join(layout.ArtifactDir, base+".mp4")

	if !req.ReadOnly {
		if err := os.MkdirAll(layout.ArtifactDir, 0o755); err != nil {
			return Layout{}, services.Wrap(services.ErrConfiguration, "project", "create artifact dir", layout.ArtifactDir, err)
		}
	}
	return layout, nil
}

func absSource(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "."
	}
	abs, err := config.ExpandPath(dir)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "project", "resolve source", dir, err)
	}
	return abs, nil
}

// outputRoot picks the artifact root: command line, then configuration, then
// "<source>/movie". The directory is never created here.
func outputRoot(req Request, sourceParent string) (string, error) {
	root := strings.TrimSpace(req.OutputRoot)
	if root == "" {
		root = strings.TrimSpace(req.ConfigRoot)
	}
	if root == "" {
		root = filepath.Join(sourceParent, defaultRootDir)
	}
	abs, err := config.ExpandPath(root)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "project", "resolve output root", root, err)
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", services.Wrap(services.ErrConfiguration, "project", "resolve output root", fmt.Sprintf("output root %s does not exist", abs), nil)
	case err != nil:
		return "", services.Wrap(services.ErrConfiguration, "project", "resolve output root", abs, err)
	case !info.IsDir():
		return "", services.Wrap(services.ErrConfiguration, "project", "resolve output root", fmt.Sprintf("output root %s is not a directory", abs), nil)
	}
	return abs, nil
}
