package wsconn

import (
	"net/url"
	"os"
	"strconv"
	"strings"
)

// ProxyConfig mirrors Poco::Net::HTTPSClientSession::ProxyConfig, the shape
// original_source/src/mimiioImpl.cpp::set_proxysettings populates from the
// https_proxy/no_proxy environment variables.
type ProxyConfig struct {
	Host          string
	Port          int
	Username      string
	Password      string
	NonProxyHosts string // no_proxy commas translated to pipes
}

// proxyFromEnv reproduces set_proxysettings's hand-rolled parse: strip the
// scheme and any trailing slash from $https_proxy, split on '@' to
// separate credentials from host:port, then split each side on ':'. The
// oddity being preserved here is the original's ordering: it processes the
// '@'-delimited segments back-to-front, so "user:pass@host:port" yields
// host, port, username, password in that order rather than the more
// obvious front-to-back split.
func proxyFromEnv() (ProxyConfig, bool) {
	raw := os.Getenv("https_proxy")
	if raw == "" {
		return ProxyConfig{}, false
	}
	raw = strings.ReplaceAll(raw, "http://", "")
	raw = strings.ReplaceAll(raw, "https://", "")
	raw = strings.ReplaceAll(raw, "/", "")

	atSegments := strings.Split(raw, "@")

	var fields []string
	for i := len(atSegments) - 1; i >= 0; i-- {
		fields = append(fields, strings.Split(atSegments[i], ":")...)
	}

	var cfg ProxyConfig
	for idx, f := range fields {
		switch idx {
		case 0:
			cfg.Host = f
		case 1:
			if port, err := strconv.Atoi(f); err == nil {
				cfg.Port = port
			}
		case 2:
			cfg.Username = f
		case 3:
			cfg.Password = f
		}
	}

	if noProxy := os.Getenv("no_proxy"); noProxy != "" {
		cfg.NonProxyHosts = strings.ReplaceAll(noProxy, ",", "|")
	}
	return cfg, true
}

// shouldBypass reports whether host matches one of cfg's pipe-separated
// NonProxyHosts entries (exact or suffix match on a leading '.').
func (cfg ProxyConfig) shouldBypass(host string) bool {
	if cfg.NonProxyHosts == "" {
		return false
	}
	for _, entry := range strings.Split(cfg.NonProxyHosts, "|") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == host || strings.HasSuffix(host, "."+strings.TrimPrefix(entry, ".")) {
			return true
		}
	}
	return false
}

// URL renders the proxy as a *url.URL suitable for (*websocket.Dialer).Proxy,
// or nil if cfg is empty or targetHost is excluded via no_proxy.
func (cfg ProxyConfig) URL(targetHost string) *url.URL {
	if cfg.Host == "" || cfg.shouldBypass(targetHost) {
		return nil
	}
	u := &url.URL{Scheme: "http", Host: cfg.Host}
	if cfg.Port != 0 {
		u.Host = cfg.Host + ":" + strconv.Itoa(cfg.Port)
	}
	if cfg.Username != "" {
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	}
	return u
}
