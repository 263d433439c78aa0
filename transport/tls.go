package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
)

// tlsConfig derives the TLS settings of the handle from base.
//
// Peer verification off skips all certificate checks. Host verification
// off with peer verification on still validates the chain against the
// trusted roots, but not the host name.
func (h *handle) tlsConfig(base *tls.Config) (*tls.Config, error) {
	conf := &tls.Config{}
	if base != nil {
		conf = base.Clone()
	}

	if h.caInfo != "" {
		pool, err := loadCABundle(h.caInfo)
		if err != nil {
			return nil, err
		}
		conf.RootCAs = pool
	}

	verifyPeer := h.verifyPeer == nil || *h.verifyPeer
	verifyHost := h.verifyHost == nil || *h.verifyHost == VerifyHostStrict

	switch {
	case !verifyPeer:
		conf.InsecureSkipVerify = true
		conf.VerifyConnection = nil
	case !verifyHost:
		roots := conf.RootCAs
		conf.InsecureSkipVerify = true
		conf.VerifyConnection = func(cs tls.ConnectionState) error {
			return verifyChain(cs, roots)
		}
	}

	return conf, nil
}

func loadCABundle(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCABundle, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%w: no certificates found in %s", ErrCABundle, path)
	}

	return pool, nil
}

// verifyChain validates the presented chain against roots without checking
// the host name. A nil roots pool means the system roots.
func verifyChain(cs tls.ConnectionState, roots *x509.CertPool) error {
	if len(cs.PeerCertificates) == 0 {
		return errors.New("tls: no peer certificates presented")
	}

	intermediates := x509.NewCertPool()
	for _, cert := range cs.PeerCertificates[1:] {
		intermediates.AddCert(cert)
	}

	opts := x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
	}
	if _, err := cs.PeerCertificates[0].Verify(opts); err != nil {
		return err
	}

	return nil
}
