// Package exporter polls a gauge and publishes its telemetry as Prometheus
// metrics.
package exporter

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"bq28z610-go/drivers/bq28z610"
	"bq28z610-go/errcode"
)

// Source is the part of *bq28z610.Device the exporter reads.
type Source interface {
	Snapshot() bq28z610.Snapshot
	CellVoltages() (cell1_mV, cell2_mV uint16, err error)
	OperationStatus() (uint32, error)
	SafetyStatus() (uint32, error)
}

var _ Source = (*bq28z610.Device)(nil)

const namespace = "bq28z610"

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves reg in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics holds the gauge collectors. It also implements bq28z610.Observer
// to count protocol events.
type Metrics struct {
	Voltage        prometheus.Gauge
	Current        prometheus.Gauge
	AverageCurrent prometheus.Gauge
	Temperature    prometheus.Gauge
	Remaining      prometheus.Gauge
	FullCharge     prometheus.Gauge
	RSOC           prometheus.Gauge
	SOH            prometheus.Gauge
	Cycles         prometheus.Gauge
	CellVoltage    *prometheus.GaugeVec // labels: cell
	Security       prometheus.Gauge
	OperationFlag  *prometheus.GaugeVec   // labels: flag
	SafetyFlag     *prometheus.GaugeVec   // labels: flag
	BatteryFlag    *prometheus.GaugeVec   // labels: flag
	Polls          *prometheus.CounterVec // labels: result=ok|error
	Events         *prometheus.CounterVec // labels: kind
	Errors         *prometheus.CounterVec // labels: code
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

// NewMetrics registers the gauge collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Voltage:        gauge("voltage_volts", "Pack voltage."),
		Current:        gauge("current_amperes", "Instantaneous current, negative while discharging."),
		AverageCurrent: gauge("average_current_amperes", "Averaged current."),
		Temperature:    gauge("temperature_celsius", "Gauge temperature."),
		Remaining:      gauge("remaining_capacity_amphours", "Remaining capacity."),
		FullCharge:     gauge("full_charge_capacity_amphours", "Full charge capacity."),
		RSOC:           gauge("relative_state_of_charge_ratio", "Relative state of charge, 0..1."),
		SOH:            gauge("state_of_health_ratio", "State of health, 0..1."),
		Cycles:         gauge("cycle_count", "Charge cycles counted by the gauge."),
		Security:       gauge("security_mode", "1 full access, 2 unsealed, 3 sealed."),
		CellVoltage: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "cell_voltage_volts", Help: "Cell voltage.",
		}, []string{"cell"}),
		OperationFlag: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "operation_status_flag", Help: "OperationStatus bits.",
		}, []string{"flag"}),
		SafetyFlag: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "safety_status_flag", Help: "SafetyStatus bits.",
		}, []string{"flag"}),
		BatteryFlag: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "battery_status_flag", Help: "BatteryStatus bits.",
		}, []string{"flag"}),
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "polls_total", Help: "Poll rounds by result.",
		}, []string{"result"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "protocol_events_total", Help: "Driver protocol events by kind.",
		}, []string{"kind"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "errors_total", Help: "Read errors by code.",
		}, []string{"code"}),
	}
	reg.MustRegister(m.Voltage, m.Current, m.AverageCurrent, m.Temperature, m.Remaining,
		m.FullCharge, m.RSOC, m.SOH, m.Cycles, m.CellVoltage, m.Security, m.OperationFlag,
		m.SafetyFlag, m.BatteryFlag, m.Polls, m.Events, m.Errors)
	return m
}

// Observe counts driver events.
func (m *Metrics) Observe(e bq28z610.Event) {
	m.Events.WithLabelValues(e.Kind.String()).Inc()
}

func setFlags(v *prometheus.GaugeVec, value uint32, table []bq28z610.Flag) {
	for _, s := range bq28z610.Decode(value, table) {
		x := 0.0
		if s.Set {
			x = 1
		}
		v.WithLabelValues(s.Name).Set(x)
	}
}

// Poller reads a Source on an interval and updates Metrics.
type Poller struct {
	src Source
	m   *Metrics
	log *zap.Logger
}

func NewPoller(src Source, m *Metrics, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{src: src, m: m, log: log}
}

// Poll performs one read round. Telemetry from the standard commands is
// always published; status reads that fail leave the previous values.
func (p *Poller) Poll() error {
	s := p.src.Snapshot()
	p.m.Voltage.Set(float64(s.Voltage_mV) / 1000)
	p.m.Current.Set(float64(s.Current_mA) / 1000)
	p.m.AverageCurrent.Set(float64(s.AverageCurrent_mA) / 1000)
	p.m.Temperature.Set(float64(s.Temperature_dC) / 10)
	p.m.Remaining.Set(float64(s.RemainingCapacity_mAh) / 1000)
	p.m.FullCharge.Set(float64(s.FullChargeCapacity_mAh) / 1000)
	p.m.RSOC.Set(float64(s.RSOC_pct) / 100)
	p.m.SOH.Set(float64(s.SOH_pct) / 100)
	p.m.Cycles.Set(float64(s.CycleCount))
	setFlags(p.m.BatteryFlag, uint32(s.BatteryStatus), bq28z610.BatteryStatusFlags)

	var firstErr error
	fail := func(what string, err error) {
		p.m.Errors.WithLabelValues(string(errcode.Of(err))).Inc()
		p.log.Warn("poll read failed", zap.String("read", what), zap.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}

	if c1, c2, err := p.src.CellVoltages(); err != nil {
		fail("cell_voltages", err)
	} else {
		p.m.CellVoltage.WithLabelValues(strconv.Itoa(1)).Set(float64(c1) / 1000)
		p.m.CellVoltage.WithLabelValues(strconv.Itoa(2)).Set(float64(c2) / 1000)
	}
	if op, err := p.src.OperationStatus(); err != nil {
		fail("operation_status", err)
	} else {
		p.m.Security.Set(float64(bq28z610.SecurityModeOf(op)))
		setFlags(p.m.OperationFlag, op, bq28z610.OperationStatusFlags)
	}
	if ss, err := p.src.SafetyStatus(); err != nil {
		fail("safety_status", err)
	} else {
		setFlags(p.m.SafetyFlag, ss, bq28z610.SafetyFlags)
	}

	if firstErr != nil {
		p.m.Polls.WithLabelValues("error").Inc()
		return firstErr
	}
	p.m.Polls.WithLabelValues("ok").Inc()
	return nil
}

// Run polls until ctx is done.
func (p *Poller) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		_ = p.Poll()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
