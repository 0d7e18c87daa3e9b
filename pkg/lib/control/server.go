// Package control exposes the state of a running command set over the
// standard gRPC health protocol.
//
// Service "" reports whether tide is running at all. Every command string of
// the active set is a service of its own: SERVING while its child runs,
// NOT_SERVING once it exited or was killed.
package control

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Builtbyjb/tide/pkg/lib"
	"github.com/Builtbyjb/tide/pkg/lib/supervisor"
)

// stopTimeout bounds GracefulStop; open Watch streams never end on their own.
const stopTimeout = time.Second

// Source is the part of *supervisor.Supervisor the server reports on.
type Source interface {
	Subscribe() (chan struct{}, error)
	Unsubscribe(ch chan struct{})
	Status() []supervisor.ProcessSnapshot
}

// Server encapsulates the listener, the gRPC server and the health state.
type Server struct {
	lis    net.Listener
	s      *grpc.Server
	health *health.Server
	source Source
	logger *log.Logger

	updates chan struct{}
	quit    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once

	// reported holds every command ever published, so commands dropped from
	// the set can be flipped to NOT_SERVING.
	reported map[string]bool
}

// NewServer listens on addr and starts following source. Call Serve to
// accept connections and Stop to release everything.
func NewServer(addr string, source Source, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = lib.DiscardLogger("control")
	}

	creds, err := ServerCredentials()
	if err != nil {
		return nil, err
	}

	updates, err := source.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to process updates: %w", err)
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		source.Unsubscribe(updates)
		return nil, fmt.Errorf("failed to listen: %w", err)
	}

	hs := health.NewServer()
	s := grpc.NewServer(grpc.Creds(creds))
	healthpb.RegisterHealthServer(s, hs)

	srv := &Server{
		lis:      lis,
		s:        s,
		health:   hs,
		source:   source,
		logger:   logger,
		updates:  updates,
		quit:     make(chan struct{}),
		reported: map[string]bool{},
	}

	srv.sync()
	srv.wg.Add(1)
	go srv.follow()

	return srv, nil
}

// Serve accepts connections until Stop is called.
func (g *Server) Serve() error {
	return g.s.Serve(g.lis)
}

// Addr returns the network address the server is bound to.
func (g *Server) Addr() net.Addr { return g.lis.Addr() }

// Stop marks every service NOT_SERVING and shuts the server down.
func (g *Server) Stop() {
	g.once.Do(func() {
		close(g.quit)
		g.wg.Wait()
		g.source.Unsubscribe(g.updates)

		g.health.Shutdown()

		stopped := make(chan struct{})
		go func() {
			g.s.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(stopTimeout):
			g.logger.Debug("graceful stop timed out, closing connections")
			g.s.Stop()
			<-stopped
		}
	})
}

func (g *Server) follow() {
	defer g.wg.Done()
	for {
		select {
		case <-g.quit:
			return
		case _, ok := <-g.updates:
			if !ok {
				return
			}
			g.sync()
		}
	}
}

// sync publishes the current snapshot. A command listed more than once is
// SERVING while any of its children runs.
func (g *Server) sync() {
	running := map[string]bool{}
	for _, snap := range g.source.Status() {
		running[snap.Command] = running[snap.Command] || snap.Status.State == lib.ProcessStateRunning
	}
	for command := range g.reported {
		if _, ok := running[command]; !ok {
			running[command] = false
		}
	}

	for command, up := range running {
		status := healthpb.HealthCheckResponse_NOT_SERVING
		if up {
			status = healthpb.HealthCheckResponse_SERVING
		}
		g.health.SetServingStatus(command, status)
		g.reported[command] = true
	}
	g.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	g.logger.Debug("health updated", "commands", len(running))
}
