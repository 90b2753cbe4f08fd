package models

import (
	"errors"
	"time"
)

// Frame selects the zodiac reference frame for longitudes.
type Frame string

const (
	FrameWestern     Frame = "western"
	FrameVedic       Frame = "vedic"
	FrameHumanDesign Frame = "human-design"
)

// Sidereal reports whether the frame requires the ayanamsa correction.
func (f Frame) Sidereal() bool {
	return f == FrameVedic || f == FrameHumanDesign
}

// Chart type tags registered in the chart registry.
const (
	ChartNatal       = "natal"
	ChartTransit     = "transit"
	ChartProgressed  = "progressed"
	ChartSynastry    = "synastry"
	ChartComposite   = "composite"
	ChartSolarReturn = "solar-return"
)

var (
	ErrInstantRequired = errors.New("birth instant is required")
	ErrLatitudeRange   = errors.New("latitude must be within [-90, 90]")
	ErrLongitudeRange  = errors.New("longitude must be within [-180, 180]")
	ErrHouseSystem     = errors.New("only the equal house system is supported")
)

// BirthData is the immutable input of every chart calculation.
type BirthData struct {
	Instant   time.Time `json:"instant"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timezone  string    `json:"timezone,omitempty"`
}

// Validate rejects out-of-range geographic input before any angle math runs.
func (b BirthData) Validate() error {
	if b.Instant.IsZero() {
		return ErrInstantRequired
	}
	if b.Latitude < -90 || b.Latitude > 90 {
		return ErrLatitudeRange
	}
	if b.Longitude < -180 || b.Longitude > 180 {
		return ErrLongitudeRange
	}
	return nil
}

// BodyKind distinguishes orbital bodies from calculated points.
// Retrograde detection applies to orbital bodies only.
type BodyKind string

const (
	KindBody      BodyKind = "body"      // Sun..Pluto, Chiron
	KindPoint     BodyKind = "point"     // mean Lilith
	KindReference BodyKind = "reference" // Earth, kept for Human-Design compatibility
)

// PlanetPosition is a fully derived body position. Recomputed fresh per
// chart; never cached across calls with different inputs.
type PlanetPosition struct {
	Name           string   `json:"name"`
	Symbol         string   `json:"symbol"`
	Kind           BodyKind `json:"kind"`
	Longitude      float64  `json:"longitude"` // [0,360), frame-adjusted
	Latitude       float64  `json:"latitude"`
	DistanceAU     float64  `json:"distance_au"`
	SpeedDegPerDay float64  `json:"speed_deg_per_day"`
	IsRetrograde   bool     `json:"is_retrograde"`
	Sign           string   `json:"sign"`
	Degree         int      `json:"degree"` // [0,30)
	Minute         int      `json:"minute"` // [0,60)
	House          int      `json:"house"`  // [1,12]
	Element        string   `json:"element"`
	Modality       string   `json:"modality"`
}

// House is one of the 12 Equal-House divisions.
type House struct {
	Number int     `json:"number"` // [1,12]
	Cusp   float64 `json:"cusp"`   // [0,360)
	Sign   string  `json:"sign"`
	Degree int     `json:"degree"`
	Minute int     `json:"minute"`
}

// Aspect is one classified angular relation between two bodies.
// Angle is the exact reference angle (0/60/90/...), Orb the actual deviation.
type Aspect struct {
	Planet1    string  `json:"planet1"`
	Planet2    string  `json:"planet2"`
	Angle      float64 `json:"angle"`
	Orb        float64 `json:"orb"`
	Type       string  `json:"type"`
	IsApplying bool    `json:"is_applying"`
}

// BirthChart is the self-contained aggregate consumed by UI/API layers.
// Ascendant == Houses[0].Cusp and Midheaven == Houses[9].Cusp by the
// Equal-House convention this package preserves.
type BirthChart struct {
	BirthData  BirthData        `json:"birth_data"`
	ChartType  string           `json:"chart_type"`
	Frame      Frame            `json:"frame"`
	Planets    []PlanetPosition `json:"planets"`
	Houses     []House          `json:"houses"`
	Aspects    []Aspect         `json:"aspects"`
	Ascendant  float64          `json:"ascendant"`
	Midheaven  float64          `json:"midheaven"`
	Descendant float64          `json:"descendant"`
	IC         float64          `json:"ic"`
}

// ChartOptions is the forward-compatible option surface. Only HouseSystem
// (equal) is honored; the zodiac frame is carried separately. AspectOrbs,
// IncludeChiron, IncludeNodes and IncludeAsteroids are accepted but are
// documented no-ops until implemented; callers get them echoed back in the
// options_ignored response field rather than having them silently dropped.
type ChartOptions struct {
	HouseSystem      string             `json:"house_system,omitempty"`
	ZodiacType       string             `json:"zodiac_type,omitempty"`
	AspectOrbs       map[string]float64 `json:"aspect_orbs,omitempty"`
	IncludeChiron    bool               `json:"include_chiron,omitempty"`
	IncludeNodes     bool               `json:"include_nodes,omitempty"`
	IncludeAsteroids bool               `json:"include_asteroids,omitempty"`
}

// IgnoredOptions lists the option fields that were set but are not honored.
func (o *ChartOptions) IgnoredOptions() []string {
	if o == nil {
		return nil
	}
	var ignored []string
	if len(o.AspectOrbs) > 0 {
		ignored = append(ignored, "aspect_orbs")
	}
	if o.IncludeChiron {
		ignored = append(ignored, "include_chiron")
	}
	if o.IncludeNodes {
		ignored = append(ignored, "include_nodes")
	}
	if o.IncludeAsteroids {
		ignored = append(ignored, "include_asteroids")
	}
	return ignored
}
