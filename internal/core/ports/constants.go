package ports

const (
	DefaultPageLimit = 20  // Listing page size when the caller omits limit
	MaxPageLimit     = 100 // Hard cap on listing page size
	RecentCount      = 5   // Transactions shown on the dashboard snapshot
)
