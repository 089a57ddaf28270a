package colorscheme

import (
	"os"

	"github.com/jmylchreest/prefstore/internal/config"
)

// FromConfig builds the detector chain used at startup and the source used
// to follow changes afterwards. Either may be empty: no detectors means
// light, no source means the preference is read once.
func FromConfig(cfg config.ColorSchemeConfig) ([]Detector, Source) {
	env := NewEnvDetector(cfg.EnvVar)

	switch cfg.Source {
	case config.ColorSourceNone:
		return nil, nil
	case config.ColorSourceEnv:
		return []Detector{env}, nil
	case config.ColorSourcePortal:
		portal := NewPortalDetector()
		return []Detector{portal}, NewPortalSource(portal, cfg.PollInterval)
	case config.ColorSourceTerminal:
		// Probing the terminal repeatedly would interfere with its output.
		return []Detector{NewTerminalDetector(os.Stdout)}, nil
	case config.ColorSourceFile:
		return []Detector{NewFileDetector(cfg.File)}, NewFileSource(cfg.File)
	}

	// auto: the followed layers keep the precedence of the startup chain.
	// The environment cannot change and the terminal is not re-probed.
	portal := NewPortalDetector()
	detectors := []Detector{env}
	layers := []Layer{{Detector: env}}
	if cfg.File != "" {
		file := NewFileDetector(cfg.File)
		detectors = append(detectors, file)
		layers = append(layers, Layer{Detector: file, Source: NewFileSource(cfg.File)})
	}
	detectors = append(detectors, portal, NewTerminalDetector(os.Stdout))
	layers = append(layers, Layer{Detector: portal, Source: NewPortalSource(portal, cfg.PollInterval)})

	return detectors, NewLayeredSource(layers...)
}
