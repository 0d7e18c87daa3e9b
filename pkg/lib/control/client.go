package control

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// StatusUnknown is reported for a service the endpoint has never published.
const StatusUnknown = "UNKNOWN"

// ServiceStatus is the health of one service as seen by a client.
type ServiceStatus struct {
	Service string
	Status  string
}

// Query checks every service in order. Service "" is the run loop itself.
func Query(ctx context.Context, conn grpc.ClientConnInterface, services []string) ([]ServiceStatus, error) {
	client := healthpb.NewHealthClient(conn)
	result := make([]ServiceStatus, 0, len(services))
	for _, service := range services {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		if err != nil {
			if Code(err) == codes.NotFound {
				result = append(result, ServiceStatus{Service: service, Status: StatusUnknown})
				continue
			}
			return nil, fmt.Errorf("health check %q: %w", service, err)
		}
		result = append(result, ServiceStatus{Service: service, Status: resp.GetStatus().String()})
	}
	return result, nil
}

// Code extracts the gRPC status code of err.
func Code(err error) codes.Code {
	st, ok := status.FromError(err)
	if !ok {
		return codes.Unknown
	}
	return st.Code()
}
