package models

// Settings are the persisted, per-database preferences
type Settings struct {
	Timezone       string `json:"timezone"`
	RateWindowDays int    `json:"rate_window_days"`
}
