package dto

type PersonRequest struct {
	ID     string  `json:"id"`
	Gender string  `json:"gender"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`

	// ServiceSeconds is nil when the field is omitted.
	ServiceSeconds *float64 `json:"service_seconds"`
}

type PersonResponse struct {
	ID             string  `json:"id"`
	EscortClass    string  `json:"escort_class"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	ServiceSeconds float64 `json:"service_seconds"`
}

type ListRosterResponse struct {
	Roster []PersonResponse `json:"roster"`
}
