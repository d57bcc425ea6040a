package model

import "time"

// WeeklyFee is one fee distributor week.
type WeeklyFee struct {
	WeekStart    time.Time `json:"week_start"`
	Tokens       string    `json:"tokens"`
	VirtualPrice string    `json:"virtual_price"`
	USD          string    `json:"usd"`
}
