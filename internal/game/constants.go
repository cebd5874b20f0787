package game

const (
	// TickRate is the fixed simulation rate in ticks per second.
	TickRate = 60

	PlayerRadius    = 16.0
	PlayerSpeed     = 225.0 // map units per second
	PlayerMaxHealth = 100.0

	ProjectileRadius = 4.0
	ProjectileSpeed  = 420.0
	ProjectileDamage = 25.0

	// FireCooldownSeconds is the minimum interval between two shots from
	// the same player. A fire input inside the window is rejected, not
	// silently dropped.
	FireCooldownSeconds = 0.5

	RoundDurationSeconds = 90.0

	// StaleTickTolerance is how many ticks behind the current tick an
	// input may reference and still be accepted for lag compensation.
	StaleTickTolerance = 30

	DefaultBestOf = 3
)
