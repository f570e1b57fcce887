package photos

import (
	"strings"
	"time"
)

const exifTimestampLayout = "2006:01:02 15:04:05"

// ListResponse mirrors the payload returned by /api/photos.
type ListResponse struct {
	Data []APIPhoto `json:"data"`
}

// APIPhoto is a photo record in transport form.
type APIPhoto struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	URL          string   `json:"url"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Make         string   `json:"make"`
	Model        string   `json:"model"`
	LensModel    string   `json:"lensModel"`
	FocalLength  float64  `json:"focalLength"`
	FNumber      float64  `json:"fNumber"`
	ExposureTime string   `json:"exposureTime"`
	ISO          int      `json:"iso"`
	Tags         []string `json:"tags"`
	Hidden       bool     `json:"hidden"`
	TakenAt      string   `json:"takenAt"`
	CreatedAt    string   `json:"createdAt"`
}

// Photo is the domain view of a photo.
type Photo struct {
	ID           string
	Title        string
	Description  string
	URL          string
	ThumbnailURL string
	Width        int
	Height       int
	Camera       string
	Lens         string
	FocalLength  float64
	FNumber      float64
	ExposureTime string
	ISO          int
	Tags         []string
	Hidden       bool
	TakenAt      time.Time
	CreatedAt    time.Time
}

// Deserialize converts the transport record into a Photo. It never fails:
// unparsable timestamps become zero times and missing tags an empty slice.
func (p APIPhoto) Deserialize() Photo {
	tags := make([]string, 0, len(p.Tags))
	for _, tag := range p.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return Photo{
		ID:           strings.TrimSpace(p.ID),
		Title:        strings.TrimSpace(p.Title),
		Description:  strings.TrimSpace(p.Description),
		URL:          p.URL,
		ThumbnailURL: p.ThumbnailURL,
		Width:        p.Width,
		Height:       p.Height,
		Camera:       cameraName(p.Make, p.Model),
		Lens:         strings.TrimSpace(p.LensModel),
		FocalLength:  p.FocalLength,
		FNumber:      p.FNumber,
		ExposureTime: strings.TrimSpace(p.ExposureTime),
		ISO:          p.ISO,
		Tags:         tags,
		Hidden:       p.Hidden,
		TakenAt:      parseTime(p.TakenAt),
		CreatedAt:    parseTime(p.CreatedAt),
	}
}

// DeserializeAll converts a page of transport records, preserving order.
func DeserializeAll(records []APIPhoto) []Photo {
	if len(records) == 0 {
		return nil
	}
	out := make([]Photo, len(records))
	for i, rec := range records {
		out[i] = rec.Deserialize()
	}
	return out
}

// IDs returns the ids of the given photos in order.
func IDs(items []Photo) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

// DisplayTitle returns the title, falling back to the id for untitled photos.
func (p Photo) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	return p.ID
}

// cameraName joins make and model, skipping the make when the model already
// carries it ("Canon" + "Canon EOS R5").
func cameraName(maker, model string) string {
	maker = strings.TrimSpace(maker)
	model = strings.TrimSpace(model)
	switch {
	case model == "":
		return maker
	case maker == "":
		return model
	case strings.HasPrefix(strings.ToLower(model), strings.ToLower(maker)):
		return model
	}
	return maker + " " + model
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(exifTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
