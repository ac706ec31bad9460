package content

import "time"

// SkillCategory groups skills under a display color.
type SkillCategory struct {
	Category string   `json:"category" yaml:"category"`
	Skills   []string `json:"lstSkills" yaml:"lstSkills"`
	Color    string   `json:"color" yaml:"color"`
}

// Project is one entry of the project gallery.
type Project struct {
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description" yaml:"description"`
	Image       string          `json:"image" yaml:"image"`
	Skills      []string        `json:"skills" yaml:"skills"`
	Details     *ProjectDetails `json:"details,omitempty" yaml:"details,omitempty"`
}

// HasSkill reports whether the project is tagged with skill.
func (p Project) HasSkill(skill string) bool {
	for _, s := range p.Skills {
		if s == skill {
			return true
		}
	}
	return false
}

// ProjectDetails is the extended record shown in the project modal.
type ProjectDetails struct {
	Category     string          `json:"categorie" yaml:"categorie"`
	Date         string          `json:"date" yaml:"date"`
	Team         string          `json:"equipe" yaml:"equipe"`
	Role         string          `json:"fonction" yaml:"fonction"`
	Context      string          `json:"contexte" yaml:"contexte"`
	SourceLink   string          `json:"github,omitempty" yaml:"github,omitempty"`
	ExternalLink string          `json:"url,omitempty" yaml:"url,omitempty"`
	Sections     []DetailSection `json:"information,omitempty" yaml:"information,omitempty"`
}

// DetailSection is an optional subtitle followed by bullet points.
type DetailSection struct {
	Subtitle string   `json:"sousTitre,omitempty" yaml:"sousTitre,omitempty"`
	Bullets  []string `json:"texte" yaml:"texte"`
}

// Experience is a job or internship plotted on the timeline.
type Experience struct {
	Title        string   `json:"poste" yaml:"poste"`
	Organization string   `json:"entreprise" yaml:"entreprise"`
	Location     string   `json:"lieu" yaml:"lieu"`
	StartDate    string   `json:"date_debut" yaml:"date_debut"`
	EndDate      string   `json:"date_fin" yaml:"date_fin"`
	Type         string   `json:"typeExperience" yaml:"typeExperience"`
	Description  string   `json:"description" yaml:"description"`
	Skills       []string `json:"skills" yaml:"skills"`
}

// Formation is a diploma or course plotted on the timeline.
type Formation struct {
	Diploma      string   `json:"diplome" yaml:"diplome"`
	Organization string   `json:"ecole" yaml:"ecole"`
	Location     string   `json:"lieu" yaml:"lieu"`
	StartDate    string   `json:"date_debut" yaml:"date_debut"`
	EndDate      string   `json:"date_fin" yaml:"date_fin"`
	Description  string   `json:"description" yaml:"description"`
	Skills       []string `json:"skills" yaml:"skills"`
}

// Contact holds the public contact details.
type Contact struct {
	Email  string   `json:"email" yaml:"email"`
	Social []Social `json:"social" yaml:"social"`
}

// Social is a link to an external profile.
type Social struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// EntryKind tells experiences and formations apart on the shared timeline.
type EntryKind string

const (
	KindExperience EntryKind = "experience"
	KindFormation  EntryKind = "formation"
)

// Entry is the common timeline view over experiences and formations.
type Entry struct {
	Kind         EntryKind `json:"kind"`
	Title        string    `json:"title"`
	Organization string    `json:"organization"`
	Location     string    `json:"location"`
	StartDate    string    `json:"start"`
	EndDate      string    `json:"end"`
	Description  string    `json:"description"`
	Skills       []string  `json:"skills"`
}

// Snapshot is the immutable aggregate of every content source. Callers must
// treat its slices and maps as read-only; a reload builds a new Snapshot.
type Snapshot struct {
	Experiences []Experience      `json:"experiences"`
	Formations  []Formation       `json:"formations"`
	Projects    []Project         `json:"projects"`
	Contact     Contact           `json:"contact"`
	Skills      []SkillCategory   `json:"skills"`
	SkillColors map[string]string `json:"skillColors"`
	Report      Report            `json:"report"`
	LoadedAt    time.Time         `json:"loadedAt"`
}

// ColorOf returns the display color of skill, or "" for an unknown skill.
func (s *Snapshot) ColorOf(skill string) string {
	if s == nil {
		return ""
	}
	return s.SkillColors[skill]
}

// Timeline returns experiences followed by formations as timeline entries.
func (s *Snapshot) Timeline() []Entry {
	if s == nil {
		return nil
	}
	entries := make([]Entry, 0, len(s.Experiences)+len(s.Formations))
	for _, e := range s.Experiences {
		entries = append(entries, Entry{
			Kind:         KindExperience,
			Title:        e.Title,
			Organization: e.Organization,
			Location:     e.Location,
			StartDate:    e.StartDate,
			EndDate:      e.EndDate,
			Description:  e.Description,
			Skills:       e.Skills,
		})
	}
	for _, f := range s.Formations {
		entries = append(entries, Entry{
			Kind:         KindFormation,
			Title:        f.Diploma,
			Organization: f.Organization,
			Location:     f.Location,
			StartDate:    f.StartDate,
			EndDate:      f.EndDate,
			Description:  f.Description,
			Skills:       f.Skills,
		})
	}
	return entries
}

// BuildSkillColors maps every skill to its category color. A skill listed
// under several categories takes the color of the last one.
func BuildSkillColors(categories []SkillCategory) map[string]string {
	colors := make(map[string]string)
	for _, c := range categories {
		for _, skill := range c.Skills {
			colors[skill] = c.Color
		}
	}
	return colors
}
