package net

import (
	"net"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

// ConnCheck checks if a TCP connection can be established to the given
// address. The address may be a URL (scheme decides the default port)
// or a plain host:port pair.
func ConnCheck(address string, timeout time.Duration) error {
	u, err := url.Parse(address)
	if err != nil {
		return errors.WithStack(err)
	}

	var host, port string
	if u.Host != "" {
		host = u.Hostname()
		port = u.Port()
		if port == "" {
			switch u.Scheme {
			case "http":
				port = "80"
			case "https":
				port = "443"
			default:
				return errors.Errorf("unsupported scheme: %s", u.Scheme)
			}
		}
	} else {
		host, port, err = net.SplitHostPort(address)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), timeout)
	if err != nil {
		return errors.WithStack(err)
	}
	return conn.Close()
}
