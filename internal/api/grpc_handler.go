package api

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"storefront-catalog-service/internal/catalog"
)

// CatalogServiceName is the service name reported by the gRPC health service.
const CatalogServiceName = "storefront.catalog.v1.Catalog"

// HealthReporter mirrors the catalog's load state into the gRPC health
// service: NOT_SERVING until the first successful load, SERVING afterwards.
// A failed reload keeps SERVING since the previous snapshot is still served.
type HealthReporter struct {
	server *health.Server
	logger *zap.Logger
}

// NewHealthReporter creates a reporter with every service NOT_SERVING.
func NewHealthReporter(logger *zap.Logger) *HealthReporter {
	s := health.NewServer()
	s.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	s.SetServingStatus(CatalogServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{server: s, logger: logger}
}

// ObserveLoad is a catalog.LoadObserver.
func (h *HealthReporter) ObserveLoad(snap *catalog.Snapshot, err error) {
	if err != nil || snap == nil {
		return
	}
	h.server.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	h.server.SetServingStatus(CatalogServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
}

// Server returns the underlying health server.
func (h *HealthReporter) Server() *health.Server {
	return h.server
}

// Shutdown marks every service NOT_SERVING and ignores later updates.
func (h *HealthReporter) Shutdown() {
	h.server.Shutdown()
}

// NewGRPCServer builds a gRPC server exposing health checking and reflection.
func NewGRPCServer(h *HealthReporter, opts ...grpc.ServerOption) *grpc.Server {
	s := grpc.NewServer(opts...)

	// gRPC Health Checking Protocol.
	grpc_health_v1.RegisterHealthServer(s, h.server)
	h.logger.Info("gRPC health check service registered", zap.String("service", CatalogServiceName))

	// Server reflection, for tools like grpcurl.
	reflection.Register(s)
	h.logger.Info("gRPC reflection service registered")

	return s
}
