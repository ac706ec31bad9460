package web

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/kbeguinel/portfolio/internal/contact"
	"github.com/kbeguinel/portfolio/internal/content"
	"github.com/kbeguinel/portfolio/internal/filter"
	"github.com/kbeguinel/portfolio/internal/timeline"
)

var templateFuncs = template.FuncMap{
	"pct": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64) + "%"
	},
	"join": strings.Join,
}

// Section anchors for in-page navigation.
const (
	anchorHome        = "accueil"
	anchorExperiences = "experiences"
	anchorProjects    = "projets"
	anchorSkills      = "competences"
	anchorContact     = "contact"
)

type navItem struct {
	Label  string
	Href   string
	Active bool
}

func navigation(route string) []navItem {
	items := []navItem{
		{Label: "Accueil", Href: "/#" + anchorHome},
		{Label: "Expériences", Href: "/#" + anchorExperiences},
		{Label: "Projets", Href: "/projects"},
		{Label: "Compétences", Href: "/skills"},
		{Label: "Contact", Href: "/#" + anchorContact},
	}
	for i := range items {
		switch {
		case route == routeHome && i == 0,
			route == routeProjects && i == 2,
			route == routeSkills && i == 3:
			items[i].Active = true
		}
	}
	return items
}

type pageData struct {
	Title    string
	Route    string
	Nav      []navItem
	Hero     heroView
	Timeline timelineView
	Gallery  galleryView
	Skills   []content.SkillCategory
	Contact  contactView
	CVURL    string
}

type heroView struct {
	Headline string
	Intro    string
	Photo    string
}

type tagView struct {
	Name  string
	Color string
}

func tags(snap *content.Snapshot, skills []string) []tagView {
	out := make([]tagView, 0, len(skills))
	for _, s := range skills {
		out = append(out, tagView{Name: s, Color: snap.ColorOf(s)})
	}
	return out
}

type timelineItem struct {
	Entry     content.Entry
	Placement timeline.Placement
	Visible   bool
	Tags      []tagView
}

type timelineView struct {
	Experiences []timelineItem
	Formations  []timelineItem
	Years       []timeline.Tick
	Invalid     []string
}

func buildTimeline(snap *content.Snapshot, w timeline.Window) timelineView {
	v := timelineView{Years: w.Years()}
	for _, e := range snap.Timeline() {
		p, err := w.PositionText(e.StartDate, e.EndDate)
		if err != nil {
			v.Invalid = append(v.Invalid, e.Title)
			continue
		}
		clamped := p.Clamp()
		item := timelineItem{Entry: e, Placement: clamped, Visible: p.Visible(), Tags: tags(snap, e.Skills)}
		if e.Kind == content.KindExperience {
			v.Experiences = append(v.Experiences, item)
		} else {
			v.Formations = append(v.Formations, item)
		}
	}
	return v
}

type skillView struct {
	Name      string
	Color     string
	Selected  bool
	ToggleURL string
}

type categoryView struct {
	Name      string
	Color     string
	Selected  bool
	Expanded  bool
	Coverage  float64
	ToggleURL string
	ExpandURL string
	Skills    []skillView
}

type cardView struct {
	Index   int
	Project content.Project
	Tags    []tagView
	OpenURL string
}

type modalView struct {
	Project  content.Project
	Tags     []tagView
	CloseURL string
}

type galleryView struct {
	Categories  []categoryView
	Cards       []cardView
	Total       int
	HasMore     bool
	HasLess     bool
	MoreURL     string
	LessURL     string
	FiltersURL  string
	ResetURL    string
	ShowFilters bool
	Modal       *modalView
}

// linker builds gallery URLs that carry the view state.
type linker struct {
	path   string
	anchor string
}

func (l linker) url(v filter.View, extra url.Values) string {
	q := v.Query()
	for k, vals := range extra {
		q[k] = vals
	}
	u := l.path
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	if l.anchor != "" {
		u += "#" + l.anchor
	}
	return u
}

func buildGallery(snap *content.Snapshot, q url.Values, l linker) galleryView {
	tax := filter.NewTaxonomy(snap.Skills)
	view := filter.ParseView(q, tax)

	g := galleryView{
		ShowFilters: view.ShowFilters,
		MoreURL:     l.url(view.More(), nil),
		LessURL:     l.url(view.Less(), nil),
		FiltersURL:  l.url(view.ToggleFilters(), nil),
		ResetURL:    l.url(filter.NewView(), nil),
	}

	for _, c := range tax.Categories() {
		cv := categoryView{
			Name:      c.Category,
			Color:     c.Color,
			Selected:  view.Selection.Categories.Has(c.Category),
			Expanded:  view.Expanded.Has(c.Category),
			Coverage:  tax.CategoryCoverage(c.Category, view.Selection),
			ToggleURL: l.url(view.With(tax.ToggleCategory(c.Category, view.Selection)), nil),
			ExpandURL: l.url(view.WithExpanded(filter.ToggleCategoryExpand(c.Category, view.Expanded)), nil),
		}
		for _, skill := range c.Skills {
			cv.Skills = append(cv.Skills, skillView{
				Name:      skill,
				Color:     c.Color,
				Selected:  view.Selection.Skills.Has(skill),
				ToggleURL: l.url(view.With(tax.ToggleSkill(skill, view.Selection)), nil),
			})
		}
		g.Categories = append(g.Categories, cv)
	}

	matching := filter.MatchingIndices(snap.Projects, view.Selection.Skills)
	g.Total = len(matching)

	shown, more, less := filter.Paginate(matching, view.Visible)
	g.HasMore, g.HasLess = more, less
	for _, i := range shown {
		p := snap.Projects[i]
		g.Cards = append(g.Cards, cardView{
			Index:   i,
			Project: p,
			Tags:    tags(snap, p.Skills),
			OpenURL: l.url(view, url.Values{"project": {strconv.Itoa(i)}}),
		})
	}

	if idx, err := strconv.Atoi(q.Get("project")); err == nil && idx >= 0 && idx < len(snap.Projects) {
		p := snap.Projects[idx]
		g.Modal = &modalView{Project: p, Tags: tags(snap, p.Skills), CloseURL: l.url(view, nil)}
	}
	return g
}

type contactView struct {
	Contact content.Contact
	Form    contact.Message
	Status  string
	Notice  string
	Fields  []string
}

func (v contactView) HasError(field string) bool {
	for _, f := range v.Fields {
		if f == field {
			return true
		}
	}
	return false
}

func pageTitle(section string) string {
	if section == "" {
		return "Portfolio"
	}
	return fmt.Sprintf("%s | Portfolio", section)
}
