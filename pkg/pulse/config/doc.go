/*
Package config assembles bus subscribers from declarative configuration.

# Overview

config turns a YAML or JSON subscriber list into live bus subscriptions.
Each entry names a handler kind, a name pattern, and factory options; the
kind resolves to a factory through a registry.Registry. This lets an
operator decide which events get logged, measured, traced, or persisted
without touching code.

# Basic Usage

Load a file and apply it to a bus:

	cfg, err := config.FromFile("subscribers.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	reg := registry.NewRegistry()
	config.RegisterBuiltins(reg, config.Builtins{})

	subs, err := config.Apply(cfg, bus, reg)

A configuration file looks like:

	subscribers:
	  - kind: log
	    pattern: /^db\./
	  - kind: metrics
	  - kind: record
	    pattern: db.query
	    options:
	      path: ./events.db

# Patterns

Pattern strings map onto the bus's subscription forms:

  - "db.query" subscribes to that exact name
  - "/^db\./" compiles the text between the slashes as a regular
    expression
  - "" (or an omitted pattern) subscribes to every event

# Built-in Kinds

RegisterBuiltins installs factories for "log", "metrics", "trace", and
"record". Applications register their own kinds alongside them:

	reg.MustRegister("audit", func(opts map[string]any) (any, error) {
	    return newAuditHandler(config.NewOptions(opts)), nil
	})

# Factory Options

Options wraps the free-form options map of an entry with typed accessors
so factories avoid hand-written type assertions:

	o := config.NewOptions(opts)
	path := o.String("path", "./events.db")
	flush := o.Duration("flush_interval", time.Second)
*/
package config
