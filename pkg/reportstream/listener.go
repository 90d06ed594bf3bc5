package reportstream

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/NotCoffee418/solar_tou_analytics/pkg/engine"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	maxRetries     = 10
	baseRetryDelay = 2 * time.Second
	maxRetryDelay  = 60 * time.Second

	// Reports arrive once per refresh, pings keep the deadline moving
	readTimeout  = 90 * time.Second
	pingInterval = 30 * time.Second
)

// StreamURL builds the websocket address of an analytics API host.
func StreamURL(host string, tls bool) string {
	scheme := "ws"
	if tls {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: host, Path: "/ws"}
	return u.String()
}

// Listen manages the websocket connection and calls handle for each report.
// It returns when ctx is done or the retries are exhausted.
func Listen(ctx context.Context, streamURL string, handle func(report *engine.Report)) error {
	retryCount := 0

	for {
		// Calculate retry delay with exponential backoff
		if retryCount > 0 {
			retryDelay := time.Duration(1<<retryCount) * baseRetryDelay
			if retryDelay > maxRetryDelay {
				retryDelay = maxRetryDelay
			}
			log.Infof("Retrying connection in %v... (attempt %d/%d)", retryDelay, retryCount+1, maxRetries)
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		log.Infof("Connecting to %s", streamURL)

		dialer := *websocket.DefaultDialer
		dialer.HandshakeTimeout = 10 * time.Second
		c, _, err := dialer.DialContext(ctx, streamURL, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Warn("Connection failed")
			retryCount++
			if retryCount >= maxRetries {
				log.Errorf("Max retries (%d) reached. Giving up.", maxRetries)
				return err
			}
			continue
		}

		log.Info("Connected! Accepting reports.")

		// Reset retry count on successful connection
		retryCount = 0

		// Handle the connection until it breaks or we're cancelled
		broken := handleConnection(ctx, c, handle)
		c.Close()

		if !broken {
			return ctx.Err()
		}
		log.Warn("Connection lost, will retry...")
		retryCount = 1
	}
}

func handleConnection(ctx context.Context, c *websocket.Conn, handle func(report *engine.Report)) bool {
	done := make(chan struct{})

	// Set read deadline to detect dead connections
	c.SetReadDeadline(time.Now().Add(readTimeout))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(readTimeout))
	})

	go func() {
		defer close(done)
		for {
			messageType, message, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.WithError(err).Warn("WebSocket error")
				} else {
					log.WithError(err).Info("Connection closed")
				}
				return
			}

			// Reset read deadline on successful message
			c.SetReadDeadline(time.Now().Add(readTimeout))

			if messageType != websocket.TextMessage {
				log.Debugf("Received unexpected message type: %d", messageType)
				continue
			}
			var report engine.Report
			if err := json.Unmarshal(message, &report); err != nil {
				log.WithError(err).Warn("Failed to parse report")
				continue
			}
			handle(&report)
		}
	}()

	// Send periodic pings to keep connection alive
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			// Connection broke
			return true
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.WithError(err).Warn("Failed to send ping")
			}
		case <-ctx.Done():
			log.Info("Shutting down, closing connection...")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.WithError(err).Warn("Error sending close message")
			}

			// Wait for close confirmation or timeout
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return false
		}
	}
}
