package domain

type Pilot struct {
	ID            int64  `json:"pilot_id"`
	Name          string `json:"name"`
	LicenseNumber string `json:"license_number"`
}
