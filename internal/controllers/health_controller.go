package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	json "github.com/goccy/go-json"
)

type HealthController struct {
	queue     *models.PendingQueue
	driver    string
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Pending       int     `json:"pending"`
	Storage       string  `json:"storage"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Pending:       hc.queue.Len(),
		Storage:       hc.driver,
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(conf *structures.Config, queue *models.PendingQueue) *HealthController {
	return &HealthController{
		queue:     queue,
		driver:    conf.Storage.Driver,
		startTime: time.Now(),
	}
}
