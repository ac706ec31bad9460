package web

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	adminCookie     = "admin_token"
	adminCookiePath = "/admin"
	adminCookieAge  = 24 * 3600
)

// Paths never recorded as visits.
var untrackedPrefixes = []string{
	"/static/",
	"/admin",
	"/favicon",
	"/privacy",
	"/metrics",
	"/healthz",
	"/api/",
}

// visitorTracking records page views with a hashed client address. Do Not
// Track is honoured.
func (s *Server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet || c.GetHeader("DNT") == "1" || untracked(path) {
			c.Next()
			return
		}

		ip, ua := c.ClientIP(), c.GetHeader("User-Agent")
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.db.RecordVisit(ctx, ip, ua, path); err != nil {
				s.logger.Warn("record visit", zap.Error(err))
			}
		}()
		c.Next()
	}
}

func untracked(path string) bool {
	for _, p := range untrackedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// adminEnabled is false until a password is configured.
func (s *Server) adminEnabled() bool {
	return s.opts.AdminPassword != ""
}

func (s *Server) setupAdminRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title":     pageTitle("Confidentialité"),
			"nav":       navigation(""),
			"tracking":  s.opts.TrackVisitors,
			"retention": retentionDays(s.opts.VisitorRetention),
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		if !s.adminEnabled() {
			c.HTML(http.StatusNotFound, "admin-error.html", gin.H{"error": "Administration désactivée"})
			return
		}
		c.HTML(http.StatusOK, "admin-login.html", gin.H{})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		if !s.adminEnabled() {
			c.HTML(http.StatusNotFound, "admin-error.html", gin.H{"error": "Administration désactivée"})
			return
		}
		username := c.PostForm("username")
		password := c.PostForm("password")

		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.opts.AdminUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.opts.AdminPassword)) == 1
		if !userOK || !passOK {
			s.logger.Warn("failed admin login", zap.String("client", s.db.HashIP(c.ClientIP())))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{"error": "Identifiants invalides"})
			return
		}

		c.SetCookie(adminCookie, s.adminToken, adminCookieAge, adminCookiePath, "", !s.opts.Debug, true)
		s.logger.Info("admin login", zap.String("client", s.db.HashIP(c.ClientIP())))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, adminCookiePath, "", !s.opts.Debug, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := r.Group("/admin")
	admin.Use(s.adminAuth())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.db.Stats(c.Request.Context())
		if err != nil {
			s.logger.Error("load admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Impossible de charger les statistiques"})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats":   stats,
			"content": statusOf(s.store.State()),
			"driver":  s.contact.Driver(),
		})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.db.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/visitors", func(c *gin.Context) {
		visitors, err := s.db.RecentVisitors(c.Request.Context(), queryLimit(c, 200))
		if err != nil {
			s.logger.Error("load visitors", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Impossible de charger les visites"})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{"visitors": visitors})
	})

	admin.GET("/messages", func(c *gin.Context) {
		messages, err := s.db.RecentMessages(c.Request.Context(), queryLimit(c, 100))
		if err != nil {
			s.logger.Error("load messages", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{"error": "Impossible de charger les messages"})
			return
		}
		c.HTML(http.StatusOK, "admin-messages.html", gin.H{"messages": messages})
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.db.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		c.JSON(http.StatusOK, stats)
	})

	admin.POST("/privacy/cleanup", func(c *gin.Context) {
		if s.opts.VisitorRetention <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no retention configured"})
			return
		}
		removed, err := s.db.CleanupVisitors(c.Request.Context(), s.opts.VisitorRetention)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"removed": removed})
	})
}

func queryLimit(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 || n > 1000 {
		return def
	}
	return n
}

func retentionDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}
