// Package livepower reads the inverter's instantaneous AC output over Modbus TCP.
// It is optional: the cloud telemetry covers everything else.
package livepower

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/types"
	"github.com/goburrow/modbus"
	probing "github.com/prometheus-community/pro-bing"
)

var (
	ErrModbusNotConfigured = fmt.Errorf("modbus not configured") // may be intended
	ErrModbusReadFailed    = fmt.Errorf("modbus read failed")
	ErrModbusNotConnected  = fmt.Errorf("modbus not connected")
)

const (
	activePowerRegister = 32080
	cacheFor            = 10 * time.Second
	maxRetries          = 3
)

type Config struct {
	Host             string
	Port             int
	WlanConnectionId string
}

// Reader caches reads to avoid spamming the poor inverter.
type Reader struct {
	cfg Config

	mu       sync.Mutex
	lastWatt int32
	lastRead time.Time

	// Replaced in tests
	readRegisters func() ([]byte, error)
	ping          func(host string) (bool, time.Duration, error)
	reconnect     func() error
	sleep         func(time.Duration)
	now           func() time.Time
}

func NewReader(cfg Config) *Reader {
	r := &Reader{
		cfg:   cfg,
		ping:  ping,
		sleep: time.Sleep,
		now:   time.Now,
	}
	r.readRegisters = r.readActivePower
	r.reconnect = r.tryReconnect
	return r
}

// IsConfigured checks if the modbus configuration is set.
// Empty values as config are acceptable.
func (r *Reader) IsConfigured() bool {
	return r.cfg.Host != "" && r.cfg.Port != 0 && r.cfg.WlanConnectionId != ""
}

// ReadWatt returns the current AC output in W.
func (r *Reader) ReadWatt() (int32, error) {
	if !r.IsConfigured() {
		return 0, ErrModbusNotConfigured
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.lastRead.IsZero() && r.lastRead.After(r.now().Add(-cacheFor)) {
		return r.lastWatt, nil
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// Try reconnecting on retry attempts
			if err := r.reconnect(); err != nil {
				lastErr = fmt.Errorf("reconnect failed on attempt %d: %w", attempt+1, err)
				continue
			}
		}

		// Ping check before attempting modbus connection
		if ok, _, err := r.ping(r.cfg.Host); !ok || err != nil {
			lastErr = fmt.Errorf("ping failed on attempt %d: %w", attempt+1, err)
			if attempt < maxRetries-1 {
				r.sleep(2 * time.Second)
			}
			continue
		}

		result, err := r.readRegisters()
		if err != nil {
			lastErr = fmt.Errorf("read power failed on attempt %d: %w", attempt+1, err)
			if attempt < maxRetries-1 {
				r.sleep(2 * time.Second)
			}
			continue
		}
		if len(result) < 4 {
			lastErr = fmt.Errorf("short register read on attempt %d: %d bytes", attempt+1, len(result))
			continue
		}

		power := int32(result[0])<<24 | int32(result[1])<<16 | int32(result[2])<<8 | int32(result[3])
		r.lastWatt = power
		r.lastRead = r.now()
		return power, nil
	}

	return 0, errors.Join(ErrModbusReadFailed, lastErr)
}

// Sample wraps a live reading as a telemetry sample of the solar channel.
func (r *Reader) Sample() (types.TelemetrySample, error) {
	w, err := r.ReadWatt()
	if err != nil {
		return types.TelemetrySample{}, err
	}
	return types.TelemetrySample{
		Timestamp: r.now().UnixMilli(),
		Solar:     types.Reading(float64(w), "W", ""),
	}, nil
}

func (r *Reader) readActivePower() ([]byte, error) {
	handler := modbus.NewTCPClientHandler(fmt.Sprintf("%s:%d", r.cfg.Host, r.cfg.Port))
	handler.Timeout = 10 * time.Second
	handler.SlaveId = 0

	if err := handler.Connect(); err != nil {
		handler.Close()
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	defer handler.Close()

	// The 2s delay after connecting causes everything to not implode as much
	r.sleep(2 * time.Second)
	client := modbus.NewClient(handler)
	return client.ReadHoldingRegisters(activePowerRegister, 2)
}

func (r *Reader) tryReconnect() error {
	// Check if already connected
	ok, _, err := r.ping(r.cfg.Host)
	if err == nil && ok {
		return nil
	}

	// Try reconnecting to wifi
	cmd := exec.Command("nmcli", "connection", "up", r.cfg.WlanConnectionId)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to bring up wifi connection: %w", err)
	}

	// Wait a bit for the connection to establish
	r.sleep(5 * time.Second)

	ok, _, err = r.ping(r.cfg.Host)
	if err != nil {
		return err
	}
	if !ok {
		return ErrModbusNotConnected
	}
	return nil
}

func ping(host string) (bool, time.Duration, error) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return false, 0, err
	}

	pinger.Count = 1
	pinger.Timeout = 2 * time.Second
	pinger.SetPrivileged(false) // UDP-based, no root needed

	err = pinger.Run()
	if err != nil {
		return false, 0, err
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv > 0 {
		return true, stats.AvgRtt, nil
	}

	return false, 0, fmt.Errorf("no response")
}
