// Package filter computes the project gallery's view state: which projects
// match the selected skills and how category and skill selections stay in
// step with each other.
package filter

import (
	"github.com/kbeguinel/portfolio/internal/content"
)

// Taxonomy indexes skill categories by name and by member skill.
type Taxonomy struct {
	categories []content.SkillCategory
	byName     map[string]int
	owner      map[string]int
}

// NewTaxonomy indexes categories. When a skill appears in several
// categories the first one owns it.
func NewTaxonomy(categories []content.SkillCategory) *Taxonomy {
	t := &Taxonomy{
		categories: categories,
		byName:     make(map[string]int, len(categories)),
		owner:      make(map[string]int),
	}
	for i, c := range categories {
		if _, dup := t.byName[c.Category]; !dup {
			t.byName[c.Category] = i
		}
		for _, skill := range c.Skills {
			if _, owned := t.owner[skill]; !owned {
				t.owner[skill] = i
			}
		}
	}
	return t
}

// Categories returns the categories in taxonomy order.
func (t *Taxonomy) Categories() []content.SkillCategory {
	return t.categories
}

// Category looks a category up by name.
func (t *Taxonomy) Category(name string) (content.SkillCategory, bool) {
	i, ok := t.byName[name]
	if !ok {
		return content.SkillCategory{}, false
	}
	return t.categories[i], true
}

// OwnerOf returns the category a skill belongs to.
func (t *Taxonomy) OwnerOf(skill string) (content.SkillCategory, bool) {
	i, ok := t.owner[skill]
	if !ok {
		return content.SkillCategory{}, false
	}
	return t.categories[i], true
}

// Selection is the pair of chosen categories and skills. A category with
// skills is in Categories exactly when all of its skills are in Skills.
type Selection struct {
	Categories Set
	Skills     Set
}

// NewSelection returns an empty selection.
func NewSelection() Selection {
	return Selection{Categories: NewSet(), Skills: NewSet()}
}

// Empty reports whether no skill is selected.
func (s Selection) Empty() bool {
	return len(s.Skills) == 0
}

// FilterProjects keeps, in order, the projects sharing at least one skill
// with selected. An empty selection keeps every project.
func FilterProjects(projects []content.Project, selected Set) []content.Project {
	out := make([]content.Project, 0, len(projects))
	for _, i := range MatchingIndices(projects, selected) {
		out = append(out, projects[i])
	}
	return out
}

// MatchingIndices is FilterProjects returning positions in projects.
func MatchingIndices(projects []content.Project, selected Set) []int {
	out := make([]int, 0, len(projects))
	for i, p := range projects {
		if len(selected) == 0 || intersects(p.Skills, selected) {
			out = append(out, i)
		}
	}
	return out
}

func intersects(skills []string, selected Set) bool {
	for _, s := range skills {
		if selected.Has(s) {
			return true
		}
	}
	return false
}

// ToggleCategory selects or clears a whole category. Clearing removes every
// member skill, including ones picked individually. Unknown categories leave
// the selection unchanged.
func (t *Taxonomy) ToggleCategory(name string, sel Selection) Selection {
	cat, ok := t.Category(name)
	if !ok {
		return sel
	}

	next := Selection{Categories: sel.Categories.Clone(), Skills: sel.Skills.Clone()}
	if next.Categories.Has(name) {
		delete(next.Categories, name)
		for _, skill := range cat.Skills {
			delete(next.Skills, skill)
		}
		return next
	}

	next.Categories[name] = struct{}{}
	for _, skill := range cat.Skills {
		next.Skills[skill] = struct{}{}
	}
	return next
}

// ToggleSkill flips one skill, then re-derives whether its owning category
// is fully selected.
func (t *Taxonomy) ToggleSkill(skill string, sel Selection) Selection {
	next := Selection{Categories: sel.Categories.Clone(), Skills: sel.Skills.toggled(skill)}

	cat, ok := t.OwnerOf(skill)
	if !ok {
		return next
	}
	if covers(next.Skills, cat.Skills) {
		next.Categories[cat.Category] = struct{}{}
	} else {
		delete(next.Categories, cat.Category)
	}
	return next
}

func covers(selected Set, skills []string) bool {
	for _, s := range skills {
		if !selected.Has(s) {
			return false
		}
	}
	return true
}

// ToggleCategoryExpand flips whether a category's skill list is shown.
func ToggleCategoryExpand(name string, expanded Set) Set {
	return expanded.toggled(name)
}

// CategoryCoverage returns the percentage of a category's skills that are
// selected. Empty and unknown categories report 0.
func (t *Taxonomy) CategoryCoverage(name string, sel Selection) float64 {
	cat, ok := t.Category(name)
	if !ok || len(cat.Skills) == 0 {
		return 0
	}
	n := 0
	for _, s := range cat.Skills {
		if sel.Skills.Has(s) {
			n++
		}
	}
	return float64(n) / float64(len(cat.Skills)) * 100
}

// Normalize rebuilds a selection decoded from untrusted input so that it
// satisfies the category invariant. Categories without skills keep the
// membership they arrived with; unknown categories are dropped.
func (t *Taxonomy) Normalize(sel Selection) Selection {
	next := Selection{Categories: NewSet(), Skills: sel.Skills.Clone()}
	for _, c := range t.categories {
		if len(c.Skills) == 0 {
			if sel.Categories.Has(c.Category) {
				next.Categories[c.Category] = struct{}{}
			}
			continue
		}
		if covers(next.Skills, c.Skills) {
			next.Categories[c.Category] = struct{}{}
		}
	}
	return next
}
