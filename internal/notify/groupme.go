package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"reception_agent/internal/config"
	"reception_agent/internal/store"
)

// client bounds the webhook call so a slow GroupMe endpoint cannot stall the
// save handler it runs in.
var client = &http.Client{Timeout: 10 * time.Second}

// HighPriorityCall posts a ping to the GroupMe bot when a High-priority call
// is saved. No-op when no bot is configured; failures are advisory only.
func HighPriorityCall(cfg config.Config, call store.Call) error {
	if cfg.GroupMeBotID == "" || call.Priority != store.PriorityHigh {
		return nil
	}
	caller := call.CallerName
	if caller == "" {
		caller = "Unknown caller"
	}
	text := fmt.Sprintf("High priority call #%d from %s: %s", call.ID, caller, call.Summary)
	payload := map[string]string{"text": text, "bot_id": cfg.GroupMeBotID}
	buf, _ := json.Marshal(payload)
	req, _ := http.NewRequest(http.MethodPost, cfg.GroupMeURL, bytes.NewBuffer(buf))
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("groupme status %d", resp.StatusCode)
	}
	return nil
}
