package domain

type Aircraft struct {
	ID       int64  `json:"aircraft_id"`
	Model    string `json:"model"`
	Capacity int    `json:"capacity"`
}
