package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbeguinel/portfolio/internal/content"
	"github.com/kbeguinel/portfolio/internal/filter"
	"github.com/kbeguinel/portfolio/internal/timeline"
)

type statusResponse struct {
	State  string `json:"state"`
	Reason string `json:"reason,omitempty"`
	Since  string `json:"since"`
}

func statusOf(st content.State) statusResponse {
	r := statusResponse{State: st.Phase.String(), Since: st.Since.UTC().Format("2006-01-02T15:04:05Z")}
	if st.Err != nil {
		r.Reason = st.Err.Error()
	}
	return r
}

func (s *Server) apiStatus(c *gin.Context) {
	c.JSON(http.StatusOK, statusOf(s.store.State()))
}

// apiReload is the retry action offered on the failed page. Browsers posting
// the form are redirected back; API clients get the new status. The reload
// outlives the request so a dropped connection cannot abort it halfway.
func (s *Server) apiReload(c *gin.Context) {
	err := s.store.Reload(context.WithoutCancel(c.Request.Context()))

	if !strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.Redirect(http.StatusSeeOther, localRedirect(c.Request.Referer(), c.Request.Host))
		return
	}

	code := http.StatusOK
	if err != nil {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, statusOf(s.store.State()))
}

// localRedirect reduces a Referer to a path on this site, or "/".
func localRedirect(referer, host string) string {
	u, err := url.Parse(referer)
	if referer == "" || err != nil {
		return "/"
	}
	if u.Host != "" && u.Host != host {
		return "/"
	}
	p := u.EscapedPath()
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
		return "/"
	}
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}

// readyJSON returns the snapshot or writes a 503 status body.
func (s *Server) readyJSON(c *gin.Context) (*content.Snapshot, bool) {
	st := s.store.State()
	if st.Phase != content.PhaseReady {
		c.JSON(http.StatusServiceUnavailable, statusOf(st))
		return nil, false
	}
	return st.Snapshot, true
}

func (s *Server) apiContent(c *gin.Context) {
	snap, ok := s.readyJSON(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap)
}

type projectsResponse struct {
	Projects   []content.Project `json:"projects"`
	Total      int               `json:"total"`
	Skills     []string          `json:"skills"`
	Categories []string          `json:"categories"`
}

// apiProjects filters by the skill and category query parameters. Each
// parameter acts like a click on the gallery filter, so category=X selects
// every skill of X.
func (s *Server) apiProjects(c *gin.Context) {
	snap, ok := s.readyJSON(c)
	if !ok {
		return
	}

	tax := filter.NewTaxonomy(snap.Skills)
	sel := filter.NewSelection()
	for _, name := range c.QueryArray(filter.ParamCategory) {
		if !sel.Categories.Has(name) {
			sel = tax.ToggleCategory(name, sel)
		}
	}
	for _, skill := range c.QueryArray(filter.ParamSkill) {
		if !sel.Skills.Has(skill) {
			sel = tax.ToggleSkill(skill, sel)
		}
	}

	projects := filter.FilterProjects(snap.Projects, sel.Skills)
	c.JSON(http.StatusOK, projectsResponse{
		Projects:   projects,
		Total:      len(projects),
		Skills:     sel.Skills.Sorted(),
		Categories: sel.Categories.Sorted(),
	})
}

func (s *Server) apiProject(c *gin.Context) {
	snap, ok := s.readyJSON(c)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 || idx >= len(snap.Projects) {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}
	c.JSON(http.StatusOK, snap.Projects[idx])
}

type timelineEntry struct {
	content.Entry
	Placement timeline.Placement `json:"placement"`
	Raw       timeline.Placement `json:"raw"`
	Colors    map[string]string  `json:"colors"`
}

func (s *Server) apiTimeline(c *gin.Context) {
	snap, ok := s.readyJSON(c)
	if !ok {
		return
	}

	w := s.opts.Window
	entries := make([]timelineEntry, 0, len(snap.Experiences)+len(snap.Formations))
	var invalid []string
	for _, e := range snap.Timeline() {
		raw, err := w.PositionText(e.StartDate, e.EndDate)
		if err != nil {
			invalid = append(invalid, e.Title)
			continue
		}
		colors := make(map[string]string, len(e.Skills))
		for _, skill := range e.Skills {
			colors[skill] = snap.ColorOf(skill)
		}
		entries = append(entries, timelineEntry{Entry: e, Placement: raw.Clamp(), Raw: raw, Colors: colors})
	}

	c.JSON(http.StatusOK, gin.H{
		"window":  gin.H{"start": w.Start.Format(timeline.DateLayout), "end": w.End.Format(timeline.DateLayout)},
		"years":   w.Years(),
		"entries": entries,
		"invalid": invalid,
	})
}
