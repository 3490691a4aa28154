package models

// DefaultValidRadiusM applies when a company row has no radius configured.
const DefaultValidRadiusM = 100

type Company struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address,omitempty"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	ValidRadiusM int     `json:"valid_radius_m"`
	CreatedAt    string  `json:"created_at,omitempty"`
}
