// Package preload ships the demo exhibit: a curated word list chosen to
// form visibly distinct semantic clusters on first launch.
package preload

// Words returns the demo collection. Each group of sixteen words is one
// intended "wing" of the museum: ocean, sky and space, forest, city,
// kitchen, the body, time, and machines.
func Words() []string {
	return []string{
		// Ocean
		"wave", "tide", "coral", "reef", "anchor", "harbor", "sail", "current",
		"depth", "abyss", "kelp", "plankton", "driftwood", "foam", "lagoon", "brine",

		// Sky and space
		"comet", "orbit", "nebula", "eclipse", "meteor", "galaxy", "horizon", "dawn",
		"dusk", "aurora", "zenith", "constellation", "gravity", "vacuum", "satellite", "moonlight",

		// Forest
		"moss", "fern", "canopy", "undergrowth", "bark", "sap", "acorn", "fungus",
		"thicket", "grove", "bramble", "lichen", "timber", "sapling", "clearing", "root",

		// City
		"pavement", "subway", "skyline", "alley", "plaza", "traffic", "streetlight", "crosswalk",
		"rooftop", "scaffold", "billboard", "curb", "tunnel", "district", "tram", "facade",

		// Kitchen
		"simmer", "knead", "whisk", "marinate", "saute", "braise", "garnish", "zest",
		"broth", "dough", "spice", "skillet", "ladle", "sift", "caramelize", "ferment",

		// The body
		"pulse", "marrow", "tendon", "breath", "spine", "nerve", "muscle", "heartbeat",
		"reflex", "iris", "knuckle", "rib", "vein", "cortex", "wrist", "palm",

		// Time
		"moment", "era", "decade", "midnight", "interval", "epoch", "instant", "eternity",
		"yesterday", "tomorrow", "deadline", "pause", "duration", "season", "century", "meanwhile",

		// Machines
		"piston", "gear", "turbine", "circuit", "valve", "lever", "dynamo", "flywheel",
		"servo", "actuator", "bearing", "solenoid", "throttle", "gasket", "winch", "ratchet",
	}
}
