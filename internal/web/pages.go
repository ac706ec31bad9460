package web

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kbeguinel/portfolio/internal/content"
)

// route names double as page-view metric labels.
const (
	routeHome     = "home"
	routeProjects = "projects"
	routeSkills   = "skills"
)

// ready returns the published snapshot, or renders the loading/failed page
// and returns false.
func (s *Server) ready(c *gin.Context) (*content.Snapshot, bool) {
	st := s.store.State()
	if st.Phase == content.PhaseReady {
		return st.Snapshot, true
	}

	data := gin.H{
		"title": pageTitle(""),
		"nav":   navigation(""),
		"phase": st.Phase.String(),
		"since": st.Since,
	}
	if st.Err != nil {
		data["reason"] = st.Err.Error()
	}
	c.Header("Retry-After", "5")
	c.HTML(http.StatusServiceUnavailable, "status.html", data)
	return nil, false
}

func (s *Server) page(route string, snap *content.Snapshot) pageData {
	s.metrics.PageViews.WithLabelValues(route).Inc()
	return pageData{
		Route: route,
		Nav:   navigation(route),
		Hero:  heroView{Headline: HeroHeadline, Intro: HeroIntro, Photo: HeroPhoto},
		Contact: contactView{
			Contact: snap.Contact,
		},
		CVURL: "/cv",
	}
}

func (s *Server) homePage(c *gin.Context) {
	snap, ok := s.ready(c)
	if !ok {
		return
	}

	data := s.page(routeHome, snap)
	data.Title = pageTitle("")
	data.Timeline = buildTimeline(snap, s.opts.Window)
	data.Gallery = buildGallery(snap, c.Request.URL.Query(), linker{path: "/", anchor: anchorProjects})
	data.Skills = snap.Skills

	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) projectsPage(c *gin.Context) {
	snap, ok := s.ready(c)
	if !ok {
		return
	}

	data := s.page(routeProjects, snap)
	data.Title = pageTitle("Projets")
	data.Gallery = buildGallery(snap, c.Request.URL.Query(), linker{path: "/projects"})

	c.HTML(http.StatusOK, "projects.html", data)
}

func (s *Server) skillsPage(c *gin.Context) {
	snap, ok := s.ready(c)
	if !ok {
		return
	}

	data := s.page(routeSkills, snap)
	data.Title = pageTitle("Compétences")
	data.Skills = snap.Skills

	c.HTML(http.StatusOK, "skills.html", data)
}

func (s *Server) downloadCV(c *gin.Context) {
	if s.opts.CVPath == "" {
		c.Status(http.StatusNotFound)
		return
	}
	info, err := os.Stat(s.opts.CVPath)
	if err != nil || info.IsDir() {
		s.logger.Warn("cv not available", zap.String("path", s.opts.CVPath), zap.Error(err))
		c.Status(http.StatusNotFound)
		return
	}
	c.FileAttachment(s.opts.CVPath, filepath.Base(s.opts.CVPath))
}

func (s *Server) healthz(c *gin.Context) {
	st := s.store.State()
	body := gin.H{"status": "ok", "content": st.Phase.String()}
	if err := s.db.Ping(c.Request.Context()); err != nil {
		body["status"] = "degraded"
		body["database"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
