package fetch

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/use-agent/llmfetch/models"
)

// classifyTransportError maps a transport failure onto the closed
// network-class reason vocabulary. Typed errors are preferred; message
// matching is the fallback for errors the standard library does not type.
func classifyTransportError(err error) string {
	if err == nil {
		return models.ReasonUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return models.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ReasonTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return models.ReasonDNSError
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return models.ReasonConnectionRefused
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return models.ReasonConnectionReset
	}

	var certErr x509.CertificateInvalidError
	var unknownAuthErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuthErr) || errors.As(err, &hostnameErr) {
		return models.ReasonSSLError
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return models.ReasonTimeout
	case strings.Contains(msg, "no such host"):
		return models.ReasonDNSError
	case strings.Contains(msg, "connection refused"):
		return models.ReasonConnectionRefused
	case strings.Contains(msg, "connection reset"):
		return models.ReasonConnectionReset
	case strings.Contains(msg, "tls") || strings.Contains(msg, "certificate") || strings.Contains(msg, "ssl"):
		return models.ReasonSSLError
	}

	return models.ReasonUnknown
}
