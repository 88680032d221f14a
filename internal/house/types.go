package house

import "time"

// House is a registered installation: one metering device serving one
// dwelling. The device ID is the natural key; a device belongs to at
// most one house.
type House struct {
	DeviceID  string    `json:"device_id"`
	Nom       string    `json:"nom"`
	Adresse   string    `json:"adresse"`
	CreatedAt time.Time `json:"created_at"`
}
