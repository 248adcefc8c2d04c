package train

// Properties are the settings shared by all carts of a train. They are copied, never shared, when a train
// splits.
type Properties struct {
	// SpeedLimit is the highest speed in blocks per tick any cart of the train may move at.
	SpeedLimit float64 `toml:"speed_limit"`
	// RequirePoweredUnit makes a train without a powered cart invalid.
	RequirePoweredUnit bool `toml:"require_powered_unit"`
	// Colliding is false for trains that pass through other trains and entities.
	Colliding bool `toml:"colliding"`
	// Linking is false for trains that never link with other trains.
	Linking bool `toml:"linking"`
	// KeepChunksLoaded makes the train hold tickets on the chunks it is in instead of unloading.
	KeepChunksLoaded bool `toml:"keep_chunks_loaded"`
	// SlowingDown is false for trains that keep their speed on level track.
	SlowingDown bool `toml:"slowing_down"`
}

// DefaultProperties returns the properties of a new train.
func DefaultProperties(conf Config) Properties {
	return Properties{
		SpeedLimit:  conf.DefaultSpeedLimit,
		Colliding:   true,
		Linking:     true,
		SlowingDown: true,
	}
}
