package push

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ConfigFunc is called on each push to get the latest gateway settings, so
// admin config changes take effect without a restart.
type ConfigFunc func() (serverURL, apiKey, appName string)

// Service delivers best-effort mobile push notifications through an external
// push gateway. Failures never propagate to the business operation.
type Service struct {
	configFn   ConfigFunc
	httpClient *http.Client
}

// New creates a push service. configFn is consulted on every push.
func New(configFn ConfigFunc) *Service {
	return &Service{
		configFn:   configFn,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type pushPayload struct {
	DeviceKey string `json:"device_key"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Group     string `json:"group,omitempty"`
}

// Push sends a notification to one device token.
func (s *Service) Push(deviceKey, title, body string) error {
	serverURL, apiKey, appName := s.configFn()
	if serverURL == "" {
		return fmt.Errorf("push gateway not configured")
	}
	if deviceKey == "" {
		return fmt.Errorf("device key is empty")
	}

	payload := pushPayload{
		DeviceKey: deviceKey,
		Title:     fmt.Sprintf("[%s] %s", appName, title),
		Body:      body,
		Group:     appName,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, serverURL+"/push", bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push gateway returned %d", resp.StatusCode)
	}
	return nil
}
