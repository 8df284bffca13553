package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/itlightning/dateparse"
)

// Mode is the attendance format of an event.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
	ModeHybrid  Mode = "hybrid"
)

// Event is a persisted hackathon/meetup/conference listing.
// The bson tags mirror the json tags so Mongo documents and API payloads share
// field names. ID is the string form of the backend key; the Mongo store keeps
// its own ObjectID _id and converts.
type Event struct {
	ID          string    `json:"_id" bson:"-"`
	Title       string    `json:"title" bson:"title" validate:"required"`
	Slug        string    `json:"slug" bson:"slug"`
	Description string    `json:"description" bson:"description" validate:"required"`
	Overview    string    `json:"overview" bson:"overview" validate:"required"`
	Image       string    `json:"image" bson:"image" validate:"required"`
	Venue       string    `json:"venue" bson:"venue" validate:"required"`
	Location    string    `json:"location" bson:"location" validate:"required"`
	Date        string    `json:"date" bson:"date"`
	Time        string    `json:"time" bson:"time"`
	Mode        Mode      `json:"mode" bson:"mode" validate:"omitempty,oneof=online offline hybrid"`
	Audience    string    `json:"audience" bson:"audience" validate:"required"`
	Organizer   string    `json:"organizer" bson:"organizer" validate:"required"`
	Agenda      []string  `json:"agenda" bson:"agenda"`
	Tags        []string  `json:"tags" bson:"tags"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

var validate = validator.New()

// ValidationError reports a submission that fails schema-level checks.
// Handlers map it to 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Normalize prepares an event for writing: trims strings, lowercases mode,
// drops blank agenda/tag entries, derives the slug and canonicalizes date/time.
func (e *Event) Normalize() error {
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	e.Overview = strings.TrimSpace(e.Overview)
	e.Image = strings.TrimSpace(e.Image)
	e.Venue = strings.TrimSpace(e.Venue)
	e.Location = strings.TrimSpace(e.Location)
	e.Audience = strings.TrimSpace(e.Audience)
	e.Organizer = strings.TrimSpace(e.Organizer)
	e.Mode = Mode(strings.ToLower(strings.TrimSpace(string(e.Mode))))

	e.Agenda = CompactStrings(e.Agenda)
	e.Tags = CompactStrings(e.Tags)
	e.Slug = Slugify(e.Title)

	date, err := NormalizeDate(e.Date)
	if err != nil {
		return err
	}
	e.Date = date

	tm, err := NormalizeTime(e.Time)
	if err != nil {
		return err
	}
	e.Time = tm

	return nil
}

// Validate enforces field presence and the mode enum.
// Fields named in skip are not checked, which lets a submission be vetted
// before its image has been uploaded. The first failing field is reported.
func (e *Event) Validate(skip ...string) error {
	var err error
	if len(skip) > 0 {
		err = validate.StructExcept(e, skip...)
	} else {
		err = validate.Struct(e)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := jsonName(fe.Field())
		switch fe.Tag() {
		case "required":
			return &ValidationError{Field: field, Reason: "is required"}
		case "oneof":
			return &ValidationError{Field: field, Reason: "must be one of online, offline, hybrid"}
		default:
			return &ValidationError{Field: field, Reason: "is invalid"}
		}
	}
	return err
}

// jsonName lowercases the first rune of a Go field name, which matches
// every json tag on Event.
func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// CompactStrings returns the trimmed, non-blank entries of in, preserving order.
// The result is never nil so it serializes as [].
func CompactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Slugify derives the URL identifier used by the detail page. Titles with no
// letters or digits produce "".
func Slugify(title string) string {
	return slug.Make(title)
}

// SuffixSlug returns base with a short suffix taken from id, for when base is
// empty or already used by another event. The suffix is the tail of id, which
// is random for UUIDs and carries the counter for ObjectIDs.
func SuffixSlug(base, id string) string {
	tail := strings.ReplaceAll(id, "-", "")
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	if base == "" {
		return "event-" + tail
	}
	return base + "-" + tail
}

// NormalizeDate parses a loosely formatted date and returns it as YYYY-MM-DD.
// Empty input stays empty.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return "", &ValidationError{Field: "date", Reason: "invalid date"}
	}
	return t.Format("2006-01-02"), nil
}

var timeLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3:04 pm",
	"3:04pm",
	"03:04 PM",
	"03:04PM",
}

// NormalizeTime accepts 24h or 12h clock input and returns HH:MM.
// Empty input stays empty.
func NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), nil
		}
	}
	return "", &ValidationError{Field: "time", Reason: "invalid time"}
}
