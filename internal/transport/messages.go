package transport

// Command is an inbound client message controlling playback or
// requesting data. Applied only on the simulation goroutine (PhaseInput),
// never from the reader.
type Command struct {
	Type      string  `json:"type"` // pause | resume | timescale | reset | orbit
	TimeScale float64 `json:"time_scale,omitempty"`
	BodyID    string  `json:"body_id,omitempty"`
	Segments  int     `json:"segments,omitempty"`
}

// BodyFrame is one body's state inside a tick frame.
type BodyFrame struct {
	ID               string     `json:"id"`
	Kind             string     `json:"kind"`
	Status           string     `json:"status"`
	ParentID         string     `json:"parent_id,omitempty"`
	MassKg           float64    `json:"mass_kg"`
	RadiusM          float64    `json:"radius_m"`
	Position         [3]float64 `json:"position,omitempty"`
	Velocity         [3]float64 `json:"velocity,omitempty"`
	Acceleration     [3]float64 `json:"acceleration,omitempty"`
	RotationAngleRad float64    `json:"rotation_angle_rad"`
}

// TickFrame is the per-tick broadcast to rendering clients.
type TickFrame struct {
	Type    string      `json:"type"` // "tick"
	SimTime float64     `json:"sim_time"`
	Bodies  []BodyFrame `json:"bodies"`
}

// DestroyedFrame reports one destruction event for visual effects.
type DestroyedFrame struct {
	Type             string     `json:"type"` // "destroyed"
	ID               string     `json:"id"`
	RadiusM          float64    `json:"radius_m"`
	ImpactPosition   [3]float64 `json:"impact_position"`
	RelativeVelocity [3]float64 `json:"relative_velocity"`
	Annihilated      bool       `json:"annihilated"`
}

// OrbitFrame answers an orbit request with a sampled closed polyline.
// Empty points means "no orbit to draw".
type OrbitFrame struct {
	Type   string       `json:"type"` // "orbit"
	BodyID string       `json:"body_id"`
	Points [][3]float64 `json:"points"`
}

// ResetFrame notifies clients that simulation time was zeroed.
type ResetFrame struct {
	Type string `json:"type"` // "time_reset"
}
