package apps

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/jsonstore"
	"github.com/chess10kp/hexpanel/internal/logging"
)

// Usage is the launch history of one app.
type Usage struct {
	LaunchCount  int       `json:"launch_count"`
	LastLaunched time.Time `json:"last_launched"`
}

// History ranks apps by how often and how recently they were launched.
// It is confined to the event loop like Directory.
type History struct {
	path     string
	records  map[string]*Usage
	halfLife time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewHistory(path string, logger *zap.Logger) *History {
	return &History{
		path:     path,
		records:  make(map[string]*Usage),
		halfLife: 7 * 24 * time.Hour,
		now:      time.Now,
		logger:   logging.OrNop(logger).Named("history"),
	}
}

func (h *History) Load() error {
	data, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read launch history: %w", err)
	}

	records := make(map[string]*Usage)
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse launch history: %w", err)
	}
	for name, u := range records {
		if u == nil {
			delete(records, name)
		}
	}
	h.records = records
	h.logger.Debug("launch history loaded", zap.Int("apps", len(records)))
	return nil
}

func (h *History) save() error {
	data, err := jsonstore.Marshal(h.records, "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal launch history: %w", err)
	}
	return jsonstore.WriteFile(h.path, data)
}

// Record counts one launch of name.
func (h *History) Record(name string) {
	if name == "" {
		return
	}

	u, ok := h.records[name]
	if !ok {
		u = &Usage{}
		h.records[name] = u
	}
	u.LaunchCount++
	u.LastLaunched = h.now()

	if err := h.save(); err != nil {
		h.logger.Warn("failed to save launch history", zap.Error(err))
	}
}

// Score mixes launch count with a recency term that halves every week.
func (h *History) Score(name string) float64 {
	u, ok := h.records[name]
	if !ok {
		return 0
	}

	elapsed := h.now().Sub(u.LastLaunched)
	if elapsed < 0 {
		elapsed = 0
	}
	recency := 100 * math.Pow(0.5, float64(elapsed)/float64(h.halfLife))
	return float64(u.LaunchCount)*0.4 + recency*0.4
}

// Top returns up to limit app names by descending score.
func (h *History) Top(limit int) []string {
	names := make([]string, 0, len(h.records))
	for name := range h.records {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		si, sj := h.Score(names[i]), h.Score(names[j])
		if si != sj {
			return si > sj
		}
		return names[i] < names[j]
	})
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	return names
}
