package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbeguinel/portfolio/internal/content"
)

func testTaxonomy() *Taxonomy {
	return NewTaxonomy([]content.SkillCategory{
		{Category: "Frontend", Skills: []string{"React", "CSS"}, Color: "blue"},
		{Category: "Backend", Skills: []string{"Go"}, Color: "green"},
		{Category: "Soft", Skills: nil, Color: "grey"},
	})
}

func testProjects() []content.Project {
	return []content.Project{
		{Title: "Site", Skills: []string{"React", "CSS"}},
		{Title: "API", Skills: []string{"Go"}},
		{Title: "Fullstack", Skills: []string{"Go", "React"}},
		{Title: "Notes", Skills: nil},
	}
}

func titles(projects []content.Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Title)
	}
	return out
}

func TestFilterProjectsEmptySelectionKeepsAll(t *testing.T) {
	projects := testProjects()

	assert.Equal(t, projects, FilterProjects(projects, NewSet()))
	assert.Equal(t, projects, FilterProjects(projects, nil))
}

func TestFilterProjectsIntersection(t *testing.T) {
	projects := testProjects()

	tests := []struct {
		name     string
		selected Set
		want     []string
	}{
		{"single skill", NewSet("Go"), []string{"API", "Fullstack"}},
		{"union of skills", NewSet("CSS", "Go"), []string{"Site", "API", "Fullstack"}},
		{"unknown skill", NewSet("Rust"), []string{}},
		{"order preserved", NewSet("React"), []string{"Site", "Fullstack"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(FilterProjects(projects, tt.selected)))
		})
	}
}

func TestFilterProjectsIncludedIffIntersects(t *testing.T) {
	projects := testProjects()
	for _, selected := range []Set{NewSet("Go"), NewSet("CSS"), NewSet("React", "Rust")} {
		kept := NewSet(titles(FilterProjects(projects, selected))...)
		for _, p := range projects {
			assert.Equal(t, intersects(p.Skills, selected), kept.Has(p.Title), "project %s with %v", p.Title, selected.Sorted())
		}
	}
}

func TestToggleCategoryRoundTrip(t *testing.T) {
	tax := testTaxonomy()
	start := Selection{Categories: NewSet("Backend"), Skills: NewSet("Go")}

	once := tax.ToggleCategory("Frontend", start)
	assert.True(t, once.Categories.Has("Frontend"))
	assert.Equal(t, []string{"CSS", "Go", "React"}, once.Skills.Sorted())

	twice := tax.ToggleCategory("Frontend", once)
	assert.True(t, start.Skills.Equal(twice.Skills))
	assert.True(t, start.Categories.Equal(twice.Categories))
}

func TestToggleCategoryDoesNotMutateInput(t *testing.T) {
	tax := testTaxonomy()
	start := NewSelection()

	_ = tax.ToggleCategory("Frontend", start)
	assert.Empty(t, start.Skills)
	assert.Empty(t, start.Categories)
}

func TestToggleCategoryClearsIndividuallyAddedSkills(t *testing.T) {
	tax := testTaxonomy()
	sel := tax.ToggleSkill("React", NewSelection())
	sel = tax.ToggleSkill("CSS", sel)
	require.True(t, sel.Categories.Has("Frontend"))

	sel = tax.ToggleCategory("Frontend", sel)
	assert.Empty(t, sel.Skills)
	assert.Empty(t, sel.Categories)
}

func TestToggleCategoryUnknownIsNoop(t *testing.T) {
	tax := testTaxonomy()
	start := Selection{Categories: NewSet(), Skills: NewSet("Go")}

	got := tax.ToggleCategory("Cooking", start)
	assert.True(t, start.Skills.Equal(got.Skills))
	assert.Empty(t, got.Categories)
}

func TestToggleCategoryWithoutSkills(t *testing.T) {
	tax := testTaxonomy()

	on := tax.ToggleCategory("Soft", NewSelection())
	assert.True(t, on.Categories.Has("Soft"))
	assert.Empty(t, on.Skills)

	off := tax.ToggleCategory("Soft", on)
	assert.False(t, off.Categories.Has("Soft"))
	assert.Empty(t, off.Skills)
}

func TestSkillBySkillMatchesCategoryToggle(t *testing.T) {
	tax := testTaxonomy()
	cat, ok := tax.Category("Frontend")
	require.True(t, ok)

	oneByOne := NewSelection()
	for _, skill := range cat.Skills {
		oneByOne = tax.ToggleSkill(skill, oneByOne)
	}
	whole := tax.ToggleCategory("Frontend", NewSelection())

	assert.Equal(t, whole.Categories.Has("Frontend"), oneByOne.Categories.Has("Frontend"))
	assert.True(t, whole.Skills.Equal(oneByOne.Skills))
	assert.True(t, whole.Categories.Equal(oneByOne.Categories))
}

func TestToggleCategoryThenSkill(t *testing.T) {
	tax := NewTaxonomy([]content.SkillCategory{
		{Category: "Frontend", Skills: []string{"React", "CSS"}},
		{Category: "Backend", Skills: []string{"Go"}},
	})

	sel := tax.ToggleCategory("Frontend", NewSelection())
	sel = tax.ToggleSkill("React", sel)

	assert.Equal(t, []string{"CSS"}, sel.Skills.Sorted())
	assert.Empty(t, sel.Categories)
}

func TestToggleSkillOutsideTaxonomy(t *testing.T) {
	tax := testTaxonomy()

	sel := tax.ToggleSkill("Rust", NewSelection())
	assert.Equal(t, []string{"Rust"}, sel.Skills.Sorted())
	assert.Empty(t, sel.Categories)

	sel = tax.ToggleSkill("Rust", sel)
	assert.Empty(t, sel.Skills)
}

func TestToggleCategoryExpand(t *testing.T) {
	expanded := ToggleCategoryExpand("Frontend", NewSet())
	assert.True(t, expanded.Has("Frontend"))

	expanded = ToggleCategoryExpand("Backend", expanded)
	assert.Equal(t, []string{"Backend", "Frontend"}, expanded.Sorted())

	expanded = ToggleCategoryExpand("Frontend", expanded)
	assert.Equal(t, []string{"Backend"}, expanded.Sorted())
}

func TestCategoryCoverage(t *testing.T) {
	tax := testTaxonomy()
	sel := tax.ToggleSkill("React", NewSelection())

	assert.InDelta(t, 50.0, tax.CategoryCoverage("Frontend", sel), 1e-9)
	assert.InDelta(t, 0.0, tax.CategoryCoverage("Backend", sel), 1e-9)
	assert.InDelta(t, 0.0, tax.CategoryCoverage("Soft", sel), 1e-9)
	assert.InDelta(t, 0.0, tax.CategoryCoverage("Cooking", sel), 1e-9)
}

func TestNormalizeRestoresInvariant(t *testing.T) {
	tax := testTaxonomy()
	raw := Selection{
		Categories: NewSet("Frontend", "Cooking", "Soft"),
		Skills:     NewSet("React", "Go"),
	}

	got := tax.Normalize(raw)
	assert.Equal(t, []string{"Backend", "Soft"}, got.Categories.Sorted())
	assert.Equal(t, []string{"Go", "React"}, got.Skills.Sorted())
}

func TestOwnerOfFirstCategoryWins(t *testing.T) {
	tax := NewTaxonomy([]content.SkillCategory{
		{Category: "A", Skills: []string{"SQL"}},
		{Category: "B", Skills: []string{"SQL", "Go"}},
	})

	owner, ok := tax.OwnerOf("SQL")
	require.True(t, ok)
	assert.Equal(t, "A", owner.Category)

	_, ok = tax.OwnerOf("Rust")
	assert.False(t, ok)
}

func TestMatchingIndices(t *testing.T) {
	assert.Equal(t, []int{1, 2}, MatchingIndices(testProjects(), NewSet("Go")))
	assert.Equal(t, []int{0, 1, 2, 3}, MatchingIndices(testProjects(), NewSet()))
}
