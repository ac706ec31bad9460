package content

import "fmt"

// Source names one of the four content documents.
type Source string

const (
	SourceExperiences Source = "experiences"
	SourceSkills      Source = "skills"
	SourceProjects    Source = "projects"
	SourceContact     Source = "contact"
)

// Sources lists every document a snapshot is built from.
var Sources = []Source{SourceExperiences, SourceSkills, SourceProjects, SourceContact}

// DataLoadError reports a content source that could not be read or did not
// have the expected shape. No snapshot is published when one occurs.
type DataLoadError struct {
	Source Source
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}
