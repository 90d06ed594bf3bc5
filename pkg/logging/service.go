// Package logging configures the shared logrus logger from config.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/config"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownFormat = fmt.Errorf("unknown log format")

// NewLogger builds a logger writing to out.
func NewLogger(cfg config.LogConfig, out io.Writer) (*log.Logger, error) {
	logger := log.New()
	logger.SetOutput(out)
	if err := apply(logger, cfg); err != nil {
		return nil, err
	}
	return logger, nil
}

// Setup applies cfg to the standard logrus logger.
func Setup(cfg config.LogConfig) error {
	return apply(log.StandardLogger(), cfg)
}

func apply(logger *log.Logger, cfg config.LogConfig) error {
	level := log.InfoLevel
	if cfg.Level != "" {
		parsed, err := log.ParseLevel(cfg.Level)
		if err != nil {
			return err
		}
		level = parsed
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, cfg.Format)
	}
	return nil
}
