package control

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	// DefaultAddress is dialed by clients when neither TIDE_ADDRESS nor a
	// configured address is available.
	DefaultAddress = "localhost:50051"

	EnvAddress = "TIDE_ADDRESS"
	EnvTLSKey  = "TIDE_TLS_KEY"
	EnvTLSCert = "TIDE_TLS_CERT"
	EnvCACert  = "TIDE_CA_TLS_CERT"
)

// tlsMaterial holds the PEM contents read from the environment.
type tlsMaterial struct {
	key, cert, ca string
}

// loadTLSMaterial returns nil when no TLS variable is set and an error when
// only some of them are.
func loadTLSMaterial() (*tlsMaterial, error) {
	m := &tlsMaterial{
		key:  strings.TrimSpace(os.Getenv(EnvTLSKey)),
		cert: strings.TrimSpace(os.Getenv(EnvTLSCert)),
		ca:   strings.TrimSpace(os.Getenv(EnvCACert)),
	}
	if m.key == "" && m.cert == "" && m.ca == "" {
		return nil, nil
	}
	if m.key == "" || m.cert == "" || m.ca == "" {
		return nil, fmt.Errorf("incomplete TLS environment; require all of %s, %s, %s", EnvTLSKey, EnvTLSCert, EnvCACert)
	}
	return m, nil
}

func (m *tlsMaterial) config() (tls.Certificate, *x509.CertPool, error) {
	cert, err := tls.X509KeyPair([]byte(m.cert), []byte(m.key))
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("failed to load key pair: %w", err)
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM([]byte(m.ca)); !ok {
		return tls.Certificate{}, nil, fmt.Errorf("failed to append CA certificate to pool")
	}
	return cert, pool, nil
}

// ServerCredentials returns mTLS credentials when the TLS environment is
// set and insecure credentials otherwise.
func ServerCredentials() (credentials.TransportCredentials, error) {
	m, err := loadTLSMaterial()
	if err != nil {
		return nil, err
	}
	if m == nil {
		return insecure.NewCredentials(), nil
	}
	cert, pool, err := m.config()
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS13,
	}), nil
}

// ClientCredentials is the client side of ServerCredentials.
func ClientCredentials() (credentials.TransportCredentials, error) {
	m, err := loadTLSMaterial()
	if err != nil {
		return nil, err
	}
	if m == nil {
		return insecure.NewCredentials(), nil
	}
	cert, pool, err := m.config()
	if err != nil {
		return nil, err
	}
	return credentials.NewTLS(&tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
		MinVersion:   tls.VersionTLS13,
	}), nil
}

// ResolveAddress picks the address a client dials: TIDE_ADDRESS first, then
// configured, then DefaultAddress.
func ResolveAddress(configured string) string {
	if addr := strings.TrimSpace(os.Getenv(EnvAddress)); addr != "" {
		return addr
	}
	if addr := strings.TrimSpace(configured); addr != "" {
		return addr
	}
	return DefaultAddress
}

// Dial opens a client connection to a control endpoint.
func Dial(addr string) (*grpc.ClientConn, error) {
	creds, err := ClientCredentials()
	if err != nil {
		return nil, err
	}
	return grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
}
