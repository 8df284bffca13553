package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/PratikDhanave/dev-event-hub/internal/imagehost"
	"github.com/PratikDhanave/dev-event-hub/internal/metrics"
	"github.com/PratikDhanave/dev-event-hub/internal/models"
	"github.com/PratikDhanave/dev-event-hub/internal/store"
)

// EventDeps are the collaborators of the /api/events routes.
type EventDeps struct {
	Store       store.EventStore
	Images      imagehost.Uploader
	ImageFolder string
	Metrics     *metrics.Metrics
}

// createEventForm mirrors the multipart body sent by the create-event page.
// agenda and tags may repeat; each occurrence is one entry.
type createEventForm struct {
	Title       string                `form:"title"`
	Description string                `form:"description"`
	Overview    string                `form:"overview"`
	Venue       string                `form:"venue"`
	Location    string                `form:"location"`
	Date        string                `form:"date"`
	Time        string                `form:"time"`
	Mode        string                `form:"mode"`
	Audience    string                `form:"audience"`
	Organizer   string                `form:"organizer"`
	Agenda      []string              `form:"agenda"`
	Tags        []string              `form:"tags"`
	Image       *multipart.FileHeader `form:"image"`
}

func (f createEventForm) event() models.Event {
	return models.Event{
		Title:       f.Title,
		Description: f.Description,
		Overview:    f.Overview,
		Venue:       f.Venue,
		Location:    f.Location,
		Date:        f.Date,
		Time:        f.Time,
		Mode:        models.Mode(f.Mode),
		Audience:    f.Audience,
		Organizer:   f.Organizer,
		Agenda:      f.Agenda,
		Tags:        f.Tags,
	}
}

// errorBody is the JSON shape of every failed /api/events response.
func errorBody(message string, err error) gin.H {
	return gin.H{"message": message, "error": err.Error()}
}

// RegisterEventRoutes registers the event API.
//
// POST /api/events        multipart create (uploads image, then stores)
// GET  /api/events        all events, newest first
// GET  /api/events/:slug  one event
func RegisterEventRoutes(r gin.IRoutes, d EventDeps) {
	r.POST("/api/events", func(c *gin.Context) {
		var form createEventForm
		if err := c.ShouldBindWith(&form, binding.FormMultipart); err != nil {
			d.Metrics.CreateFailed("invalid")
			c.JSON(http.StatusBadRequest, errorBody("Invalid event data", err))
			return
		}

		ev := form.event()
		if err := ev.Normalize(); err != nil {
			d.Metrics.CreateFailed("invalid")
			c.JSON(http.StatusBadRequest, errorBody("Invalid event data", err))
			return
		}

		data, err := readImage(form.Image)
		if err != nil {
			d.Metrics.CreateFailed("missing_image")
			c.JSON(http.StatusBadRequest, errorBody("Image file is required", err))
			return
		}

		// Reject incomplete submissions before paying for an upload.
		if err := ev.Validate("Image"); err != nil {
			d.Metrics.CreateFailed("invalid")
			c.JSON(http.StatusBadRequest, errorBody("Invalid event data", err))
			return
		}

		uploaded, err := d.Images.Upload(c.Request.Context(), data, d.ImageFolder)
		if err != nil {
			log.Printf("POST /api/events: image upload: %v", err)
			d.Metrics.CreateFailed("upload")
			c.JSON(http.StatusInternalServerError, errorBody("Image upload failed", err))
			return
		}
		ev.Image = uploaded.SecureURL

		if err := d.Store.CreateEvent(c.Request.Context(), &ev); err != nil {
			switch {
			case errors.Is(err, store.ErrDuplicate):
				d.Metrics.CreateFailed("duplicate")
				c.JSON(http.StatusConflict, gin.H{
					"message": "Event with this title already exists",
					"error":   "Duplicate event",
				})
			case models.IsValidation(err):
				d.Metrics.CreateFailed("invalid")
				c.JSON(http.StatusBadRequest, errorBody("Invalid event data", err))
			default:
				log.Printf("POST /api/events: store: %v", err)
				d.Metrics.CreateFailed("store")
				c.JSON(http.StatusInternalServerError, errorBody("Event creation failed", err))
			}
			return
		}

		d.Metrics.EventCreated()
		c.JSON(http.StatusCreated, gin.H{
			"message": "Event created successfully",
			"event":   ev,
		})
	})

	r.GET("/api/events", func(c *gin.Context) {
		events, err := d.Store.ListEvents(c.Request.Context())
		if err != nil {
			log.Printf("GET /api/events: %v", err)
			c.JSON(http.StatusInternalServerError, errorBody("Event fetching failed", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Events fetched successfully",
			"events":  events,
		})
	})

	r.GET("/api/events/:slug", func(c *gin.Context) {
		slug := c.Param("slug")

		ev, err := d.Store.EventBySlug(c.Request.Context(), slug)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"message": "Event not found",
				"error":   fmt.Sprintf("no event with slug %q", slug),
			})
			return
		}
		if err != nil {
			log.Printf("GET /api/events/%s: %v", slug, err)
			c.JSON(http.StatusInternalServerError, errorBody("Event fetching failed", err))
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Event fetched successfully",
			"event":   ev,
		})
	})
}

var errNoImage = errors.New("image file is missing or empty")

// readImage loads the uploaded part into memory; a missing or zero-byte part is an error.
func readImage(fh *multipart.FileHeader) ([]byte, error) {
	if fh == nil || fh.Size == 0 {
		return nil, errNoImage
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, errNoImage
	}
	return data, nil
}
