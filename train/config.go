package train

// Config holds the physics tuning of a simulation. The defaults give the usual minecart feel;
// the spacing constants in particular are empirical and only meaningful together.
type Config struct {
	// CartDistance is the ideal distance between two carts on straight track.
	CartDistance float64 `toml:"cart_distance"`
	// TurnedCartDistance is the ideal distance between two carts that are not heading the same way.
	TurnedCartDistance float64 `toml:"turned_cart_distance"`
	// CartDistanceForcer scales the spacing correction on straight track.
	CartDistanceForcer float64 `toml:"cart_distance_forcer"`
	// TurnedCartDistanceForcer scales the spacing correction of turned carts.
	TurnedCartDistanceForcer float64 `toml:"turned_cart_distance_forcer"`
	// NearCartDistanceFactor multiplies the correction when two carts are closer than ideal.
	NearCartDistanceFactor float64 `toml:"near_cart_distance_factor"`
	// MaxCartDistance is the distance beyond which two carts are no longer considered linked.
	MaxCartDistance float64 `toml:"max_cart_distance"`
	// TurnedDirectionThreshold is the heading difference in degrees from which two carts count as turned.
	TurnedDirectionThreshold int `toml:"turned_direction_threshold"`
	// TurnedPitchThreshold is the pitch difference in degrees from which two carts count as turned.
	TurnedPitchThreshold float32 `toml:"turned_pitch_threshold"`

	// StepThreshold is the largest distance a cart may move in a single physics step. Faster trains have
	// their tick split into several steps.
	StepThreshold float64 `toml:"step_threshold"`
	// DefaultSpeedLimit is the speed limit of new trains in blocks per tick.
	DefaultSpeedLimit float64 `toml:"default_speed_limit"`

	Gravity          float64 `toml:"gravity"`
	SlopeForce       float64 `toml:"slope_force"`
	PoweredCartBoost float64 `toml:"powered_cart_boost"`
	// SlowDownNormal is the velocity kept every tick by carts that are occupied or not slowed when empty.
	SlowDownNormal float64 `toml:"slow_down_normal"`
	// SlowDownSlow is the velocity kept every tick by empty carts.
	SlowDownSlow       float64 `toml:"slow_down_slow"`
	SlowDownEmptyCarts bool    `toml:"slow_down_empty_carts"`

	// MinSeparation is the distance below which carts of the same train collide with each other.
	MinSeparation float64 `toml:"min_separation"`
	// CollisionIgnoreMin and CollisionIgnoreMax bound the amount of ticks two trains ignore each other
	// after splitting.
	CollisionIgnoreMin int `toml:"collision_ignore_min"`
	CollisionIgnoreMax int `toml:"collision_ignore_max"`
	// TeleportImmunityTicks is the amount of ticks after a teleport during which a train keeps its chunks.
	TeleportImmunityTicks int `toml:"teleport_immunity_ticks"`
	// LinkSearchSteps is the amount of rail blocks searched when checking whether two carts may link.
	LinkSearchSteps int `toml:"link_search_steps"`
	// JournalSize is the amount of events kept by the event journal.
	JournalSize int `toml:"journal_size"`
}

// DefaultConfig returns the default physics configuration.
func DefaultConfig() Config {
	return Config{
		CartDistance:             1.5,
		TurnedCartDistance:       1.6,
		CartDistanceForcer:       0.1,
		TurnedCartDistanceForcer: 0.2,
		NearCartDistanceFactor:   1.2,
		MaxCartDistance:          4.0,
		TurnedDirectionThreshold: 45,
		TurnedPitchThreshold:     10,

		StepThreshold:     0.4,
		DefaultSpeedLimit: 0.4,

		Gravity:            0.04,
		SlopeForce:         0.0078125,
		PoweredCartBoost:   0.1,
		SlowDownNormal:     0.997,
		SlowDownSlow:       0.96,
		SlowDownEmptyCarts: true,

		MinSeparation:         0.5,
		CollisionIgnoreMin:    20,
		CollisionIgnoreMax:    40,
		TeleportImmunityTicks: 10,
		LinkSearchSteps:       8,
		JournalSize:           256,
	}
}
