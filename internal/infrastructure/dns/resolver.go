package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Resolver looks up TXT records through net.Resolver. When server is set
// all queries go to that "host:port" instead of the system resolver.
type Resolver struct {
	resolver *net.Resolver
	timeout  time.Duration
}

func NewResolver(server string, timeout time.Duration) *Resolver {
	r := &net.Resolver{}
	if server != "" {
		r.PreferGo = true
		r.Dial = func(ctx context.Context, network, _ string) (net.Conn, error) {
			d := net.Dialer{Timeout: timeout}
			return d.DialContext(ctx, network, server)
		}
	}
	return &Resolver{resolver: r, timeout: timeout}
}

// LookupTXT returns every TXT string at host. NXDOMAIN yields an empty
// slice and no error.
func (r *Resolver) LookupTXT(ctx context.Context, host string) ([]string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	records, err := r.resolver.LookupTXT(ctx, host)
	return txtResult(host, records, err)
}

// txtResult maps a missing name to an empty answer and wraps every other
// lookup failure.
func txtResult(host string, records []string, err error) ([]string, error) {
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("txt lookup %s: %w", host, err)
	}
	return records, nil
}
