package samlvalidator

import (
	"context"
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"net/url"

	"github.com/crewjam/saml"
	"github.com/crewjam/saml/samlsp"
)

// ProviderConfig holds what it takes to stand up the SAML service provider.
type ProviderConfig struct {
	CertFile       string
	KeyFile        string
	EntityID       string
	RootURL        string // external base URL of this gateway
	IdPMetadataURL string
}

// NewServiceProvider loads the SP keypair, fetches IdP metadata and builds
// the service provider with ACS, SLO and metadata endpoints rooted under
// /saml/ on the gateway's external URL.
func NewServiceProvider(ctx context.Context, cfg ProviderConfig) (*saml.ServiceProvider, error) {
	keyPair, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("load sp keypair: %w", err)
	}
	cert := keyPair.Leaf
	if cert == nil {
		cert, err = x509.ParseCertificate(keyPair.Certificate[0])
		if err != nil {
			return nil, fmt.Errorf("parse sp certificate: %w", err)
		}
	}
	signer, ok := keyPair.PrivateKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("sp private key does not implement crypto.Signer")
	}

	metadataURL, err := url.Parse(cfg.IdPMetadataURL)
	if err != nil {
		return nil, fmt.Errorf("invalid idp metadata url: %w", err)
	}
	idpMetadata, err := samlsp.FetchMetadata(ctx, http.DefaultClient, *metadataURL)
	if err != nil {
		return nil, fmt.Errorf("fetch idp metadata: %w", err)
	}

	root, err := url.Parse(cfg.RootURL)
	if err != nil {
		return nil, fmt.Errorf("invalid root url: %w", err)
	}

	entityID := cfg.EntityID
	if entityID == "" {
		entityID = root.String()
	}

	return &saml.ServiceProvider{
		EntityID:          entityID,
		Key:               signer,
		Certificate:       cert,
		MetadataURL:       *root.JoinPath("/saml/metadata"),
		AcsURL:            *root.JoinPath("/saml/acs"),
		SloURL:            *root.JoinPath("/saml/slo"),
		IDPMetadata:       idpMetadata,
		AuthnNameIDFormat: saml.PersistentNameIDFormat,
		// Logins may land without a tracked request id; the session layer,
		// not request correlation, is what gates access.
		AllowIDPInitiated: true,
	}, nil
}
