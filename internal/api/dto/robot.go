package dto

type RobotPositionRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}
