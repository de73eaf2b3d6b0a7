// Package certs provides the TLS certificate the API server listens with.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	certName = "server.crt"
	keyName  = "server.key"

	validity = 365 * 24 * time.Hour
	// renewBefore regenerates self-signed certificates this close to expiry.
	renewBefore = 30 * 24 * time.Hour
)

// DefaultHosts are the names a self-signed certificate covers when none are given.
var DefaultHosts = []string{"localhost", "127.0.0.1", "::1"}

// Source locates the server certificate. With CertFile and KeyFile set the
// pair is loaded as is; otherwise a self-signed certificate for Hosts is kept
// in Dir and regenerated when missing, unreadable or about to expire.
type Source struct {
	CertFile string
	KeyFile  string
	Dir      string
	Hosts    []string

	now func() time.Time
}

// Load returns the certificate described by s.
func (s Source) Load() (tls.Certificate, error) {
	if s.CertFile != "" || s.KeyFile != "" {
		if s.CertFile == "" || s.KeyFile == "" {
			return tls.Certificate{}, errors.New("both a certificate file and a key file are required")
		}
		cert, err := tls.LoadX509KeyPair(s.CertFile, s.KeyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("failed to load certificate: %w", err)
		}
		return cert, nil
	}

	if s.Dir == "" {
		return tls.Certificate{}, errors.New("certificate directory is required")
	}
	return s.selfSigned()
}

// TLSConfig loads the certificate and returns a server TLS configuration.
func (s Source) TLSConfig() (*tls.Config, error) {
	cert, err := s.Load()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

func (s Source) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s Source) hosts() []string {
	if len(s.Hosts) == 0 {
		return DefaultHosts
	}
	return s.Hosts
}

func (s Source) selfSigned() (tls.Certificate, error) {
	certFile := filepath.Join(s.Dir, certName)
	keyFile := filepath.Join(s.Dir, keyName)

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	switch {
	case err == nil:
		reason := s.check(cert)
		if reason == nil {
			return cert, nil
		}
		slog.Info("Regenerating self-signed certificate", "dir", s.Dir, "reason", reason)
	case errors.Is(err, os.ErrNotExist):
		slog.Info("Generating self-signed certificate", "dir", s.Dir, "hosts", s.hosts())
	default:
		slog.Warn("Replacing unreadable certificate", "dir", s.Dir, "error", err)
	}

	if err := s.generate(certFile, keyFile); err != nil {
		return tls.Certificate{}, err
	}
	return tls.LoadX509KeyPair(certFile, keyFile)
}

// check rejects a certificate that expires soon or misses a configured host.
func (s Source) check(cert tls.Certificate) error {
	if len(cert.Certificate) == 0 {
		return errors.New("no certificates found")
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return fmt.Errorf("failed to parse certificate: %w", err)
	}

	now := s.clock()
	if now.Before(leaf.NotBefore) {
		return errors.New("certificate not yet valid")
	}
	if now.Add(renewBefore).After(leaf.NotAfter) {
		return errors.New("certificate expires soon")
	}

	for _, host := range s.hosts() {
		if err := leaf.VerifyHostname(host); err != nil {
			return fmt.Errorf("certificate not valid for %s: %w", host, err)
		}
	}
	return nil
}

func (s Source) generate(certFile, keyFile string) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create certificate directory: %w", err)
	}

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := s.clock()
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"TransactiTrack"}, CommonName: s.hosts()[0]},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, host := range s.hosts() {
		if ip := net.ParseIP(host); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, host)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	keyDER, err := x509.MarshalECPrivateKey(priv)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}

	if err := writePEM(keyFile, "EC PRIVATE KEY", keyDER); err != nil {
		return err
	}
	return writePEM(certFile, "CERTIFICATE", certDER)
}

// writePEM replaces path atomically with a single PEM block readable only by
// the current user.
func writePEM(path, blockType string, der []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := pem.Encode(tmp, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set permissions on %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save %s: %w", filepath.Base(path), err)
	}
	return nil
}
