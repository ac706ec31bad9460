package content

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// extensions are tried in order when locating a source document.
var extensions = []string{".json", ".yaml", ".yml"}

// Loader reads the four content documents from a filesystem.
type Loader struct {
	fsys fs.FS
	now  func() time.Time
}

// NewLoader returns a Loader reading from the directory dir.
func NewLoader(dir string) *Loader {
	return NewFSLoader(os.DirFS(dir))
}

// NewFSLoader returns a Loader reading from fsys.
func NewFSLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys, now: time.Now}
}

type experiencesDoc struct {
	Experiences *[]Experience `json:"experiences" yaml:"experiences"`
	Formations  []Formation   `json:"formations" yaml:"formations"`
}

type skillsDoc struct {
	Skills *[]SkillCategory `json:"skills" yaml:"skills"`
}

type projectsDoc struct {
	Projects *[]Project `json:"projects" yaml:"projects"`
}

type contactDoc struct {
	Contact *Contact `json:"contact" yaml:"contact"`
}

// Load reads all sources in parallel and joins them into a Snapshot. It
// fails with a *DataLoadError as soon as any source fails; partial results
// are discarded.
func (l *Loader) Load(ctx context.Context) (snap *Snapshot, err error) {
	var (
		exp      experiencesDoc
		skills   skillsDoc
		projects projectsDoc
		contact  contactDoc
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.read(ctx, SourceExperiences, &exp) })
	g.Go(func() error { return l.read(ctx, SourceSkills, &skills) })
	g.Go(func() error { return l.read(ctx, SourceProjects, &projects) })
	g.Go(func() error { return l.read(ctx, SourceContact, &contact) })

	err = g.Wait()
	if err != nil {
		return nil, err
	}

	switch {
	case exp.Experiences == nil:
		err = &DataLoadError{Source: SourceExperiences, Err: errors.New(`missing "experiences" list`)}
	case skills.Skills == nil:
		err = &DataLoadError{Source: SourceSkills, Err: errors.New(`missing "skills" list`)}
	case projects.Projects == nil:
		err = &DataLoadError{Source: SourceProjects, Err: errors.New(`missing "projects" list`)}
	case contact.Contact == nil:
		err = &DataLoadError{Source: SourceContact, Err: errors.New(`missing "contact" record`)}
	}
	if err != nil {
		return nil, err
	}

	snap = &Snapshot{
		Experiences: *exp.Experiences,
		Formations:  exp.Formations,
		Projects:    *projects.Projects,
		Contact:     *contact.Contact,
		Skills:      *skills.Skills,
		SkillColors: BuildSkillColors(*skills.Skills),
		LoadedAt:    l.now(),
	}
	if snap.Formations == nil {
		snap.Formations = []Formation{}
	}
	snap.Report = Validate(snap)

	return snap, nil
}

func (l *Loader) read(ctx context.Context, src Source, out any) error {
	if err := ctx.Err(); err != nil {
		return &DataLoadError{Source: src, Err: err}
	}

	name, data, err := l.locate(src)
	if err != nil {
		return &DataLoadError{Source: src, Err: err}
	}

	err = decode(name, data, out)
	if err != nil {
		return &DataLoadError{Source: src, Err: errors.Wrapf(err, "failed to parse %s", name)}
	}
	return nil
}

func (l *Loader) locate(src Source) (name string, data []byte, err error) {
	for _, ext := range extensions {
		name = string(src) + ext
		data, err = fs.ReadFile(l.fsys, name)
		if err == nil {
			return name, data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return name, nil, errors.Wrapf(err, "failed to read %s", name)
		}
	}
	return "", nil, errors.Errorf("no %s document found", src)
}

func decode(name string, data []byte, out any) error {
	if path.Ext(name) == ".json" {
		return json.Unmarshal(data, out)
	}
	return yaml.Unmarshal(data, out)
}

// IsSourceFile reports whether a file name is one the Loader reads.
func IsSourceFile(name string) bool {
	ext := path.Ext(name)
	base := name[:len(name)-len(ext)]
	for _, src := range Sources {
		if base != string(src) {
			continue
		}
		for _, e := range extensions {
			if ext == e {
				return true
			}
		}
	}
	return false
}
