package cloudinary

import (
	"strconv"
	"strings"
)

const (
	defaultSide    = 1200
	defaultQuality = "auto:good"
	defaultFormat  = "auto"

	BackgroundRemove = "remove"
)

// Transformation - запрошенные правки для URL доставки
type Transformation struct {
	Resize     bool
	Crop       bool
	Width      int
	Height     int
	Quality    string
	Format     string
	Background string
}

// Parts returns the ordered transformation codes: c_, w_, h_, q_, f_, e_background_removal, b_.
func (t Transformation) Parts() []string {
	parts := make([]string, 0, 6)

	if t.Resize || t.Crop {
		mode := "fit"
		if t.Crop {
			mode = "fill"
		}
		w, h := t.Width, t.Height
		if w <= 0 {
			w = defaultSide
		}
		if h <= 0 {
			h = defaultSide
		}
		parts = append(parts, "c_"+mode, "w_"+strconv.Itoa(w), "h_"+strconv.Itoa(h))
	}

	q := strings.TrimSpace(t.Quality)
	if q == "" {
		q = defaultQuality
	}
	parts = append(parts, "q_"+q)

	f := strings.TrimSpace(t.Format)
	if f == "" {
		f = defaultFormat
	}
	parts = append(parts, "f_"+f)

	switch bg := strings.TrimSpace(strings.ToLower(t.Background)); {
	case bg == "":
	case bg == BackgroundRemove:
		parts = append(parts, "e_background_removal")
	case strings.HasPrefix(bg, "#"):
		parts = append(parts, "b_rgb:"+strings.TrimPrefix(bg, "#"))
	default:
		parts = append(parts, "b_"+bg)
	}

	return parts
}

func (t Transformation) String() string {
	return strings.Join(t.Parts(), ",")
}
