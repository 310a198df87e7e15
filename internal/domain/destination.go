package domain

// A named landmark orders can be sent to without a map link.
type Destination struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

func (d Destination) Coordinates() Coordinates {
	return Coordinates{Lat: d.Lat, Lon: d.Lng}
}
