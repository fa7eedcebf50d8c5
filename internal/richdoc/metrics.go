package richdoc

import (
	"time"

	"github.com/aisa-it/richdoc/internal/richdoc/sessions"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "richdoc"

type Metrics struct {
	commands *prometheus.CounterVec
}

// NewMetrics регистрирует счетчик выполненных команд, число открытых сессий и время запуска
func NewMetrics(reg prometheus.Registerer, sm *sessions.SessionsManager) (*Metrics, error) {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "commands_total",
			Help:      "Successfully executed editor commands",
		}, []string{"command"}),
	}

	sessionsGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "sessions",
		Help:      "Open editing sessions",
	}, func() float64 {
		return float64(sm.Count())
	})

	bootTimeGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "boot_time",
		Help:      "Server startup time",
	})
	bootTimeGauge.Set(float64(time.Now().UnixMilli()))

	for _, c := range []prometheus.Collector{m.commands, sessionsGauge, bootTimeGauge} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) CommandDone(command string) {
	m.commands.WithLabelValues(command).Inc()
}
