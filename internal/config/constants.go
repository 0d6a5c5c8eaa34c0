package config

const (
	// DefaultDatabasePath is the default path for the cache database
	DefaultDatabasePath = "./bgsync.db"

	// DefaultBGGBaseURL is the upstream XML API v2 root
	DefaultBGGBaseURL = "https://boardgamegeek.com/xmlapi2"

	// DefaultBGGSyncSchedule runs a full sync every 6 hours
	DefaultBGGSyncSchedule = "0 */6 * * *"
)
