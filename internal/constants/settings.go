package constants

const (
	SettingTimezone       = "timezone"
	SettingRateWindowDays = "rate_window_days"

	// Default Settings Values
	DefaultTimezone       = "UTC"
	DefaultRateWindowDays = 30
)
