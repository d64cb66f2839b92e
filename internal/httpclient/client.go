// Package httpclient builds the process-wide *req.Client from static configuration.
package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/imroc/req/v3"

	"github.com/polarityio/ripe/internal/version"
)

// DefaultUserAgent is the User-Agent sent when no explicit value is configured.
// var (not const) because version.Version is a link-time variable.
var DefaultUserAgent = "ripe/" + version.Version + " (+https://github.com/polarityio/ripe)"

// Options carries the static request settings applied to every outbound request.
type Options struct {
	// Proxy is an http://, https:// or socks5:// URL. Empty means the
	// HTTP_PROXY / HTTPS_PROXY / NO_PROXY environment variables apply.
	Proxy string
	// UserAgent overrides DefaultUserAgent when non-empty.
	UserAgent string

	// CertFile and KeyFile locate a PEM client certificate and private key.
	// KeyFile may be empty when CertFile also holds the key.
	CertFile string
	KeyFile  string
	// Passphrase decrypts a legacy encrypted PEM private key.
	Passphrase string
	// CAFile is a PEM bundle that replaces the system root CAs.
	CAFile string
	// RejectUnauthorized enables TLS peer verification. Disabling it sets
	// InsecureSkipVerify.
	RejectUnauthorized bool

	Logger *slog.Logger
	// Debug attaches a response logging hook when Logger is non-nil.
	Debug bool
}

// ResolveProxy returns the proxy value that will actually be used.
// If proxy is explicitly configured, it is returned as-is.
// Otherwise the standard proxy env vars are checked
// (HTTPS_PROXY, HTTP_PROXY, ALL_PROXY and their lowercase variants);
// if any are set "<from environment>" is returned.
// If none are set, an empty string is returned.
func ResolveProxy(proxy string) string {
	if proxy != "" {
		return proxy
	}
	for _, env := range []string{"HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy", "ALL_PROXY", "all_proxy"} {
		if os.Getenv(env) != "" {
			return "<from environment>"
		}
	}
	return ""
}

// New builds a *req.Client from opts. Certificate, key and CA files are read
// once here; any unreadable or malformed file is an error. The client carries
// no retry policy and no rate limiter.
func New(opts Options) (*req.Client, error) {
	tlsConfig, err := buildTLSConfig(opts)
	if err != nil {
		return nil, err
	}

	client := req.NewClient()
	client.SetTLSClientConfig(tlsConfig)

	if opts.UserAgent != "" {
		client.SetUserAgent(opts.UserAgent)
	} else {
		client.SetUserAgent(DefaultUserAgent)
	}

	if opts.Proxy != "" {
		if err := validateProxy(opts.Proxy); err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.Proxy, err)
		}
		client.SetProxyURL(opts.Proxy)
	} else {
		client.SetProxy(http.ProxyFromEnvironment)
	}

	if opts.Debug && opts.Logger != nil {
		attachDebugHook(client, opts.Logger)
	}

	return client, nil
}

func buildTLSConfig(opts Options) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !opts.RejectUnauthorized, //nolint:gosec // explicit opt-out via reject-unauthorized=false
	}

	if opts.CAFile != "" {
		pool, err := loadCAPool(opts.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}

	if opts.CertFile != "" || opts.KeyFile != "" {
		cert, err := loadClientCert(opts.CertFile, opts.KeyFile, opts.Passphrase)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}

	return cfg, nil
}

func loadCAPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading CA bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("CA bundle %q contains no PEM certificates", path)
	}
	return pool, nil
}

func loadClientCert(certFile, keyFile, passphrase string) (tls.Certificate, error) {
	if certFile == "" {
		return tls.Certificate{}, errors.New("client key configured without a client certificate")
	}
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("reading client certificate: %w", err)
	}

	keyPEM := certPEM
	if keyFile != "" {
		keyPEM, err = os.ReadFile(keyFile)
		if err != nil {
			return tls.Certificate{}, fmt.Errorf("reading client key: %w", err)
		}
	}

	if passphrase != "" {
		keyPEM, err = decryptKey(keyPEM, passphrase)
		if err != nil {
			return tls.Certificate{}, err
		}
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("loading client key pair: %w", err)
	}
	return cert, nil
}

// decryptKey returns the first private key block in data, decrypted with
// passphrase when it carries legacy (RFC 1423) PEM encryption headers.
func decryptKey(data []byte, passphrase string) ([]byte, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, errors.New("no PEM private key found")
		}
		if block.Type == "ENCRYPTED PRIVATE KEY" {
			return nil, errors.New("PKCS#8 encrypted keys are not supported; convert the key to legacy PEM encryption")
		}
		if block.Type != "PRIVATE KEY" && block.Type != "RSA PRIVATE KEY" && block.Type != "EC PRIVATE KEY" {
			continue
		}
		if !x509.IsEncryptedPEMBlock(block) { //nolint:staticcheck // legacy PEM encryption is the only passphrase format supported
			return pem.EncodeToMemory(block), nil
		}
		der, err := x509.DecryptPEMBlock(block, []byte(passphrase)) //nolint:staticcheck // see above
		if err != nil {
			return nil, fmt.Errorf("decrypting client key: %w", err)
		}
		return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil
	}
}

// maxLoggedBody caps the error body excerpt in debug logs.
const maxLoggedBody = 512

// attachDebugHook logs every registry response at DEBUG level. Non-2xx
// responses also carry an excerpt of the body.
func attachDebugHook(client *req.Client, logger *slog.Logger) {
	client.OnAfterResponse(func(_ *req.Client, resp *req.Response) error {
		if resp.Response == nil || resp.Request == nil || resp.Request.RawRequest == nil {
			return nil
		}
		raw := resp.Request.RawRequest
		body := resp.Bytes()
		attrs := []any{
			"method", raw.Method,
			"url", raw.URL.String(),
			"status", resp.StatusCode,
			"size", humanize.Bytes(uint64(len(body))),
			"elapsed", resp.TotalTime().Round(time.Millisecond),
		}
		if !resp.IsSuccessState() {
			attrs = append(attrs, "body", string(body[:min(len(body), maxLoggedBody)]))
		}
		logger.Debug("registry response", attrs...)
		return nil
	})
}

// validateProxy performs a basic check that the proxy URL has a recognised scheme.
func validateProxy(proxy string) error {
	for _, scheme := range []string{"http://", "https://", "socks5://"} {
		if len(proxy) >= len(scheme) && proxy[:len(scheme)] == scheme {
			return nil
		}
	}
	return fmt.Errorf("proxy scheme must be http://, https://, or socks5://")
}
