package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kbeguinel/portfolio/internal/contact"
	"github.com/kbeguinel/portfolio/internal/content"
)

func (s *Server) siteContact() content.Contact {
	if snap, ok := s.store.Snapshot(); ok {
		return snap.Contact
	}
	return content.Contact{}
}

// contactForm returns the bare form fragment for HTMX swaps.
func (s *Server) contactForm(c *gin.Context) {
	c.HTML(http.StatusOK, "contact.html", contactView{Contact: s.siteContact()})
}

// submitContact relays the form and answers with the form fragment again:
// cleared after a successful send, kept as typed otherwise.
func (s *Server) submitContact(c *gin.Context) {
	view := contactView{Contact: s.siteContact()}

	var msg contact.Message
	if err := c.ShouldBind(&msg); err != nil {
		view.Status = contact.StatusError
		view.Notice = contactInvalidText
		c.HTML(http.StatusBadRequest, "contact.html", view)
		return
	}

	res, err := s.contact.Submit(c.Request.Context(), msg)
	if err == nil {
		view.Status = res.Status
		view.Notice = contactSentText
		c.HTML(http.StatusOK, "contact.html", view)
		return
	}

	view.Form = msg
	view.Status = contact.StatusError

	var verr *contact.ValidationError
	if errors.As(err, &verr) {
		view.Notice = contactInvalidText
		view.Fields = verr.Fields
		c.HTML(http.StatusBadRequest, "contact.html", view)
		return
	}

	s.logger.Warn("contact submission failed", zap.Error(err))
	view.Notice = contactErrorText
	c.HTML(http.StatusBadGateway, "contact.html", view)
}
