package filter

import (
	"net/url"
	"strconv"
)

// PageStep is how many project cards "show more" and "show less" move by.
const PageStep = 6

// Query parameter names carrying the gallery view state.
const (
	ParamSkill    = "skill"
	ParamCategory = "category"
	ParamExpand   = "expand"
	ParamVisible  = "visible"
	ParamFilters  = "filters"
)

// View is the gallery's per-request state, carried in the URL.
type View struct {
	Selection   Selection
	Expanded    Set
	Visible     int
	ShowFilters bool
}

// NewView returns the initial gallery state.
func NewView() View {
	return View{Selection: NewSelection(), Expanded: NewSet(), Visible: PageStep}
}

// ParseView decodes a view from query parameters, normalizing the selection
// against t.
func ParseView(q url.Values, t *Taxonomy) View {
	v := NewView()
	v.Selection = t.Normalize(Selection{
		Categories: NewSet(q[ParamCategory]...),
		Skills:     NewSet(q[ParamSkill]...),
	})
	v.Expanded = NewSet(q[ParamExpand]...)
	if n, err := strconv.Atoi(q.Get(ParamVisible)); err == nil {
		v.Visible = clampVisible(n)
	}
	v.ShowFilters = q.Get(ParamFilters) == "1"
	return v
}

// Query encodes the view back into query parameters.
func (v View) Query() url.Values {
	q := url.Values{}
	for _, s := range v.Selection.Skills.Sorted() {
		q.Add(ParamSkill, s)
	}
	for _, c := range v.Selection.Categories.Sorted() {
		q.Add(ParamCategory, c)
	}
	for _, e := range v.Expanded.Sorted() {
		q.Add(ParamExpand, e)
	}
	if v.Visible != PageStep {
		q.Set(ParamVisible, strconv.Itoa(v.Visible))
	}
	if v.ShowFilters {
		q.Set(ParamFilters, "1")
	}
	return q
}

// With returns a copy of v with a different selection.
func (v View) With(sel Selection) View {
	v.Selection = sel
	return v
}

// WithExpanded returns a copy of v with a different expanded set.
func (v View) WithExpanded(expanded Set) View {
	v.Expanded = expanded
	return v
}

// More shows one more page of projects.
func (v View) More() View {
	v.Visible = clampVisible(v.Visible + PageStep)
	return v
}

// Less shows one page fewer, never below a single page.
func (v View) Less() View {
	v.Visible = clampVisible(v.Visible - PageStep)
	return v
}

// ToggleFilters shows or hides the filter panel.
func (v View) ToggleFilters() View {
	v.ShowFilters = !v.ShowFilters
	return v
}

func clampVisible(n int) int {
	if n < PageStep {
		return PageStep
	}
	return n
}

// Paginate returns the first visible items and whether more or fewer pages
// can be shown.
func Paginate[T any](items []T, visible int) (shown []T, hasMore, hasLess bool) {
	visible = clampVisible(visible)
	if visible >= len(items) {
		shown = items
	} else {
		shown = items[:visible]
	}
	return shown, visible < len(items), visible > PageStep
}
