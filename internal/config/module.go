package config

import "go.uber.org/fx"

// Module supplies *Config read from os.Args and the environment. Graphs
// built in tests swap it out with fx.Replace.
var Module = fx.Provide(Load)
