// Package modkit carries the shared wiring stage modules are built from
package modkit

import (
	"sentiprep/internal/platform/config"
	"sentiprep/internal/platform/logger"
)

// Deps holds what every stage module is constructed with
type Deps struct {
	Log    logger.Logger
	Cfg    config.Conf
	Params config.Params
}

// Option mutates build configuration for a module
type Option func(*buildCfg)

type buildCfg struct {
	name  string
	stage string
	ports any
}

// WithName sets the registry name of the module
func WithName(name string) Option {
	return func(c *buildCfg) { c.name = name }
}

// WithStage sets the stage label used in logs; defaults to the name
func WithStage(stage string) Option {
	return func(c *buildCfg) { c.stage = stage }
}

// WithPorts sets the port set the module exposes
func WithPorts[T any](p T) Option {
	return func(c *buildCfg) { c.ports = p }
}

// Built is the resolved build configuration
type Built struct {
	Name  string
	Stage string
	Ports any
}

// Build applies opts in order
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.stage == "" {
		c.stage = c.name
	}
	return Built{Name: c.name, Stage: c.stage, Ports: c.ports}
}
