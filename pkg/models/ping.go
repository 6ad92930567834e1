package models

// PingStatus is the body of the user service's /ping response.
type PingStatus struct {
	Sessions int `json:"sessions"`
}
