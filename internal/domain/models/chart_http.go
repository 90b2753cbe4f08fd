package models

// Requests for chart HTTP endpoints. Defined in domain for consistency and reuse.

type BirthInput struct {
	Instant   string  `json:"instant" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Timezone  string  `json:"timezone"`
}

type ChartRequest struct {
	Type       string        `json:"type" validate:"required,oneof=natal transit progressed synastry composite solar-return"`
	Frame      string        `json:"frame" default:"western" validate:"oneof=western vedic human-design"`
	Birth      *BirthInput   `json:"birth" validate:"required"`
	Partner    *BirthInput   `json:"partner,omitempty"`
	TargetDate string        `json:"target_date,omitempty"`
	Options    *ChartOptions `json:"options,omitempty"`
}

type RecentChartsRequest struct {
	Limit int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=200"`
	Type  string `query:"type" json:"type" validate:"omitempty,oneof=natal transit progressed synastry composite solar-return"`
}

type TransitStreamRequest struct {
	Latitude  float64 `query:"latitude" json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `query:"longitude" json:"longitude" validate:"gte=-180,lte=180"`
	Frame     string  `query:"frame" json:"frame" default:"western" validate:"oneof=western vedic human-design"`
}

// ChartResponse wraps a computed chart together with the option fields that
// were accepted but not honored (see ChartOptions).
type ChartResponse struct {
	Chart          BirthChart `json:"chart"`
	OptionsIgnored []string   `json:"options_ignored,omitempty"`
	Cached         bool       `json:"cached"`
}
