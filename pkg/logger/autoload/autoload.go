// Package autoload initializes the global logger from the LOG_* environment
// as a side effect of being imported.
package autoload

import (
	configx "github.com/kopihaus/barista-agent/pkg/config"
	logx "github.com/kopihaus/barista-agent/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
