package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fleetops/fleetd/api/vehicles"
	"github.com/fleetops/fleetd/config"
	"github.com/fleetops/fleetd/core/activitylog"
	"github.com/fleetops/fleetd/core/fleet"
	coremetrics "github.com/fleetops/fleetd/core/metrics"
	"github.com/fleetops/fleetd/core/stats"
	"github.com/fleetops/fleetd/core/store"
	"github.com/fleetops/fleetd/core/telematics"
	"github.com/fleetops/fleetd/infra/logger"
	"github.com/fleetops/fleetd/infra/metrics"
	"github.com/fleetops/fleetd/infra/mqtt"
	"github.com/fleetops/fleetd/infra/storage"
	"github.com/fleetops/fleetd/internal/eventbus"
)

// Service wires the fleet engine, the telematics simulator and the
// HTTP surfaces together.
type Service struct {
	Fleet     *fleet.Service
	Stats     *stats.Aggregator
	Simulator *telematics.Simulator

	cfg       *config.Config
	st        store.Store
	bus       *eventbus.Bus
	sink      coremetrics.MetricsSink
	publisher *mqtt.Publisher
	handler   *vehicles.Handler
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var st store.Store
	switch cfg.Store.Backend {
	case "memory":
		st = store.NewMemoryStore()
	default:
		sqlite, err := storage.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		st = sqlite
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken,
			cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	recorder := activitylog.NewRecorder(st.ActivityLogs(), logger.New("activity-log"),
		activitylog.WithBus(bus),
		activitylog.WithSink(sink),
	)

	fleetOpts := []fleet.Option{}
	if sc, ok := sink.(coremetrics.StatusChangeRecorder); ok {
		fleetOpts = append(fleetOpts, fleet.WithStatusSink(sc))
	}
	fleetSvc := fleet.New(st.Vehicles(), st.Reports(), recorder, logger.New("fleet"), fleetOpts...)
	agg := stats.New(st.Vehicles())
	sim := telematics.New(cfg.Simulator, st.Vehicles(), recorder, logger.New("telematics"))

	svc := &Service{
		Fleet:     fleetSvc,
		Stats:     agg,
		Simulator: sim,
		cfg:       cfg,
		st:        st,
		bus:       bus,
		sink:      sink,
		handler:   vehicles.NewHandler(fleetSvc, agg, cfg.API.Token, logger.New("api")),
		log:       logg,
	}

	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Simulator.Enabled {
		go s.Simulator.Start(ctx)
	}
	if s.publisher != nil {
		go s.publisher.Run(ctx, s.bus)
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.Metrics.SnapshotIntervalSeconds > 0 {
		go s.exportSnapshots(ctx)
	}

	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: s.handler.Router()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("fleet API listening on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// exportSnapshots periodically records the aggregate fleet view into
// the metrics sink.
func (s *Service) exportSnapshots(ctx context.Context) {
	rec, ok := s.sink.(coremetrics.FleetSnapshotRecorder)
	if !ok {
		return
	}
	interval := time.Duration(s.cfg.Metrics.SnapshotIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		st, err := s.Stats.Collect(ctx)
		if err != nil {
			s.log.Errorf("collect snapshot: %v", err)
			continue
		}
		if err := rec.RecordFleetSnapshot(coremetrics.FleetSnapshot{
			Total:                st.Total,
			Available:            st.Available,
			Reserved:             st.Reserved,
			Maintenance:          st.Maintenance,
			NeedsMaintenanceSoon: st.NeedsMaintenanceSoon,
			Time:                 time.Now(),
		}); err != nil {
			s.log.Errorf("record snapshot: %v", err)
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	s.bus.Close()
	return s.st.Close()
}
