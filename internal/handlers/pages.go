package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/dev-event-hub/internal/store"
)

// RegisterPageRoutes registers the server-rendered pages. The engine must
// have the web templates loaded (see web.Templates).
//
// GET /               featured events, read fresh on every request
// GET /events/:slug   event details
// GET /create-event   submission form
func RegisterPageRoutes(r gin.IRoutes, st store.EventStore) {
	r.GET("/", func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		events, err := st.ListEvents(c.Request.Context())
		if err != nil {
			log.Printf("GET /: %v", err)
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"Title":   "Something went wrong",
				"Message": "Events could not be loaded.",
			})
			return
		}

		c.HTML(http.StatusOK, "home.html", gin.H{
			"Title":  "DevEvent",
			"Events": events,
		})
	})

	r.GET("/events/:slug", func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")

		ev, err := st.EventBySlug(c.Request.Context(), c.Param("slug"))
		if errors.Is(err, store.ErrNotFound) {
			c.HTML(http.StatusNotFound, "not-found.html", gin.H{
				"Title": "Event not found",
			})
			return
		}
		if err != nil {
			log.Printf("GET /events/%s: %v", c.Param("slug"), err)
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{
				"Title":   "Something went wrong",
				"Message": "Event details could not be loaded.",
			})
			return
		}

		c.HTML(http.StatusOK, "event.html", gin.H{
			"Title": ev.Title,
			"Event": ev,
		})
	})

	r.GET("/create-event", func(c *gin.Context) {
		c.HTML(http.StatusOK, "create-event.html", gin.H{
			"Title": "Create New Event",
		})
	})
}
