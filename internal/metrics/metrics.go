package metrics

import (
	"fmt"
	"time"

	"github.com/goodtune/mstat/internal/lmstat"
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder turns a parsed report into Prometheus gauges. Each Recorder owns
// its registry so the textfile only ever contains mstat series.
type Recorder struct {
	registry *prometheus.Registry

	SeatsIssued  *prometheus.GaugeVec
	SeatsUsed    *prometheus.GaugeVec
	Sessions     *prometheus.GaugeVec
	SessionHours *prometheus.GaugeVec
	LastCapture  prometheus.Gauge
}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		SeatsIssued: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mstat_license_seats_issued",
				Help: "Seats issued by the license server per toolbox",
			},
			[]string{"toolbox"},
		),

		SeatsUsed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mstat_license_seats_used",
				Help: "Seats currently checked out per toolbox",
			},
			[]string{"toolbox", "type"},
		),

		Sessions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mstat_license_sessions",
				Help: "User sessions listed per toolbox",
			},
			[]string{"toolbox"},
		),

		SessionHours: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mstat_license_session_hours",
				Help: "Longest time a user has held a seat of a toolbox, in hours",
			},
			[]string{"toolbox", "user"},
		),

		LastCapture: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mstat_last_capture_timestamp_seconds",
				Help: "Unix time the report was parsed",
			},
		),
	}

	r.registry.MustRegister(
		r.SeatsIssued,
		r.SeatsUsed,
		r.Sessions,
		r.SessionHours,
		r.LastCapture,
	)

	return r
}

// Registry exposes the registry holding only the license series.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe replaces all series with the contents of reports.
func (r *Recorder) Observe(reports []lmstat.BlockReport, capturedAt time.Time) {
	r.SeatsIssued.Reset()
	r.SeatsUsed.Reset()
	r.Sessions.Reset()
	r.SessionHours.Reset()

	for _, report := range reports {
		license := report.License
		r.SeatsIssued.WithLabelValues(license.Toolbox).Set(float64(license.Issued))
		r.SeatsUsed.WithLabelValues(license.Toolbox, license.Type).Set(float64(license.Used))
		r.Sessions.WithLabelValues(license.Toolbox).Set(float64(len(report.Sessions)))

		// A user may hold several seats of one toolbox; keep the longest.
		longest := make(map[string]float64, len(report.Sessions))
		for _, s := range report.Sessions {
			if h, ok := longest[s.Username]; !ok || s.ElapsedHours > h {
				longest[s.Username] = s.ElapsedHours
			}
		}
		for user, hours := range longest {
			r.SessionHours.WithLabelValues(license.Toolbox, user).Set(hours)
		}
	}

	r.LastCapture.Set(float64(capturedAt.Unix()))
}

// WriteTextfile writes the current series in the text exposition format for
// node_exporter's textfile collector. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
