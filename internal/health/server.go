package health

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/fjod/go_cart/pos-terminal/pkg/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name probes report under in addition to the overall "" service.
const ServiceName = "pos.terminal"

const probeTimeout = 2 * time.Second

// Probe checks one dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server exposes grpc_health_v1 and keeps it in step with dependency probes.
type Server struct {
	grpc     *grpc.Server
	health   *grpchealth.Server
	probes   []Probe
	interval time.Duration
	log      *zap.Logger

	mu     sync.Mutex
	status healthpb.HealthCheckResponse_ServingStatus
}

func NewServer(probes []Probe, interval time.Duration, log *zap.Logger) *Server {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	srv := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(srv)

	s := &Server{
		grpc:     srv,
		health:   hs,
		probes:   probes,
		interval: interval,
		log:      logger.OrNop(log),
		status:   healthpb.HealthCheckResponse_UNKNOWN,
	}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

// Run probes immediately and then every interval until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.ProbeOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ProbeOnce(ctx)
		}
	}
}

// ProbeOnce runs every probe and reports SERVING only when all pass.
func (s *Server) ProbeOnce(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for _, p := range s.probes {
		checkCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := p.Check(checkCtx)
		cancel()
		if err != nil {
			s.log.Warn("health probe failed", zap.String("probe", p.Name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.setStatus(status)
	return status
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == status {
		return
	}
	s.status = status
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	s.log.Info("serving status changed", zap.String("status", status.String()))
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
