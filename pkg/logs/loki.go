package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/journihealth/journi_backend/config"
)

// lokiWriter is an io.Writer that pushes each JSON log line to Loki's
// push API as its own stream entry.
type lokiWriter struct {
	endpoint string
	username string
	password string
	client   *http.Client
	stream   map[string]string
}

func newLokiHandler(cfg *config.Config, level slog.Level) slog.Handler {
	lw := &lokiWriter{
		endpoint: cfg.Logging.Output.Loki.Endpoint + "/loki/api/v1/push",
		username: cfg.Logging.Output.Loki.Username,
		password: cfg.Logging.Output.Loki.Password,
		client:   &http.Client{Timeout: 3 * time.Second},
		stream: map[string]string{
			"service": cfg.Observability.ServiceName,
			"env":     cfg.Server.Environment,
		},
	}
	return slog.NewJSONHandler(lw, &slog.HandlerOptions{Level: level})
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

func (lw *lokiWriter) Write(p []byte) (n int, err error) {
	line := strings.TrimRight(string(p), "\n")
	push := lokiPush{Streams: []lokiStream{{
		Stream: lw.stream,
		Values: [][2]string{{fmt.Sprintf("%d", time.Now().UnixNano()), line}},
	}}}

	body, err := json.Marshal(push)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequest(http.MethodPost, lw.endpoint, strings.NewReader(string(body)))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if lw.username != "" {
		req.SetBasicAuth(lw.username, lw.password)
	}

	resp, err := lw.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return len(p), nil
}
