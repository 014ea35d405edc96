// Package broker owns the connection to the front-end's publish/subscribe
// broker and the snapshot-reading side-channel used to recover the
// current front-end parameters on each event.
package broker

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/poppadum/dynquee-go/internal/config"
	"github.com/poppadum/dynquee-go/internal/shutdown"
)

// Subscriber owns the broker connection and exposes a blocking
// "next event" operation per spec.md §4.1.
type Subscriber struct {
	cfg      config.Recalbox
	shutdown *shutdown.Coordinator
	client   mqtt.Client
	queue    *eventQueue
	httpc    *http.Client
}

// New creates a Subscriber and connects to the configured broker. Connect
// failures are logged; the underlying client's auto-reconnect takes over
// from there, per spec.md §4.1's accepted-retry-behavior clause.
func New(cfg config.Recalbox, sd *shutdown.Coordinator) *Subscriber {
	s := &Subscriber{
		cfg:      cfg,
		shutdown: sd,
		queue:    newEventQueue(),
		httpc:    &http.Client{Timeout: 5 * time.Second},
	}

	clientID := "dynquee-" + uuid.New().String()
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)).
		SetClientID(clientID).
		SetKeepAlive(time.Duration(cfg.Keepalive) * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetOnConnectHandler(func(c mqtt.Client) {
			slog.Info("broker connected", "host", cfg.Host, "topic", cfg.Topic, "client_id", clientID)
			if token := c.Subscribe(cfg.Topic, 1, s.onMessage); token.Wait() && token.Error() != nil {
				slog.Error("broker subscribe failed", "topic", cfg.Topic, "error", token.Error())
			}
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			slog.Warn("broker connection lost", "error", err)
		})

	s.client = mqtt.NewClient(opts)
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		slog.Error("broker connect failed", "host", cfg.Host, "error", token.Error())
	}
	return s
}

func (s *Subscriber) onMessage(_ mqtt.Client, msg mqtt.Message) {
	s.queue.push(string(msg.Payload()))
}

// Close disconnects from the broker.
func (s *Subscriber) Close() {
	s.client.Disconnect(250)
}

// GetEvent blocks until the next message payload is available, polling
// the shutdown flag at least every checkInterval, per spec.md §4.1.
// Returns "", false once shutdown has been signaled.
func (s *Subscriber) GetEvent(checkInterval time.Duration) (string, bool) {
	for {
		if payload, ok := s.queue.pop(); ok {
			return payload, true
		}
		select {
		case <-s.shutdown.Done():
			return "", false
		case <-s.queue.notify:
		case <-time.After(checkInterval):
		}
		if s.shutdown.Triggered() {
			return "", false
		}
	}
}

// GetEventParams reads the front-end's current parameter snapshot, per
// spec.md §4.1 and §6: local file or remote HTTP JSON, selected by
// cfg.IsLocal. Read/parse failures return an empty map and are logged.
func (s *Subscriber) GetEventParams() map[string]string {
	var body string
	var err error
	if s.cfg.IsLocal {
		body, err = readLocalSnapshot(s.cfg.ESStateLocalFile)
	} else {
		body, err = s.readRemoteSnapshot(s.cfg.ESStateRemoteURL)
	}
	if err != nil {
		slog.Error("failed to read front-end state snapshot", "error", err)
		return map[string]string{}
	}
	return parseSnapshot(body)
}

func readLocalSnapshot(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Subscriber) readRemoteSnapshot(url string) (string, error) {
	resp, err := s.httpc.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("broker: snapshot request returned %s", resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var envelope struct {
		Data struct {
			ReadFile string `json:"readFile"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", fmt.Errorf("broker: malformed snapshot JSON: %w", err)
	}
	return envelope.Data.ReadFile, nil
}

// parseSnapshot splits body on CRLF, skips empty lines, splits each
// remaining line on the first '=' only, and strips stray CR characters.
// Unparseable lines (no '=') are skipped, not errors.
func parseSnapshot(body string) map[string]string {
	params := make(map[string]string)
	for _, line := range strings.Split(body, "\r\n") {
		line = strings.ReplaceAll(line, "\r", "")
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			slog.Warn("skipped unparseable snapshot line", "line", line)
			continue
		}
		key := line[:idx]
		value := line[idx+1:]
		params[key] = value
	}
	return params
}
