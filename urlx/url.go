// Package urlx is the call metadata carried with every invocation:
// protocol, address, service path and a flat parameter map.
package urlx

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/KOMKZ/go-yogan-confenv/config"
	"github.com/KOMKZ/go-yogan-confenv/errcode"
)

// Well-known parameter keys
const (
	ApplicationKey = "application"
	InterfaceKey   = "interface"
	GroupKey       = "group"
	VersionKey     = "version"
	MethodsKey     = "methods"
)

// ModuleCode urlx module code
const ModuleCode = 24

// ErrInvalidURL is returned by Parse
var ErrInvalidURL = errcode.Register(errcode.New(
	ModuleCode, 1, "urlx", "error.urlx.invalid", "invalid url",
))

// URL is immutable; With* methods return copies
type URL struct {
	Protocol string
	Username string
	Password string
	Host     string
	Port     int
	Path     string

	params map[string]string
}

// New creates a URL; params is copied
func New(protocol, host string, port int, path string, params map[string]string) *URL {
	u := &URL{
		Protocol: protocol,
		Host:     host,
		Port:     port,
		Path:     strings.TrimPrefix(path, "/"),
		params:   make(map[string]string, len(params)),
	}
	for k, v := range params {
		u.params[k] = v
	}
	return u
}

// Parse parses protocol://[user[:password]@]host[:port]/path?k=v
func Parse(raw string) (*URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidURL.WithMsgf("url must not be empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidURL.WithMsgf("parse url %q failed", raw).Wrap(err)
	}
	if parsed.Scheme == "" {
		return nil, ErrInvalidURL.WithMsgf("url %q has no protocol", raw)
	}

	u := &URL{
		Protocol: parsed.Scheme,
		Host:     parsed.Hostname(),
		Path:     strings.TrimPrefix(parsed.Path, "/"),
		params:   make(map[string]string),
	}
	if p := parsed.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, ErrInvalidURL.WithMsgf("invalid port %q", p).Wrap(err)
		}
		u.Port = port
	}
	if parsed.User != nil {
		u.Username = parsed.User.Username()
		u.Password, _ = parsed.User.Password()
	}
	for k, vs := range parsed.Query() {
		if len(vs) > 0 {
			u.params[k] = vs[len(vs)-1]
		}
	}
	return u, nil
}

// Address returns host:port, or host when no port is set
func (u *URL) Address() string {
	if u.Port == 0 {
		return u.Host
	}
	return u.Host + ":" + strconv.Itoa(u.Port)
}

// Parameter returns the parameter value and whether it is set
func (u *URL) Parameter(key string) (string, bool) {
	v, ok := u.params[key]
	return v, ok
}

// ParameterOr returns the parameter value, or def when it is missing or empty
func (u *URL) ParameterOr(key, def string) string {
	if v, ok := u.params[key]; ok && v != "" {
		return v
	}
	return def
}

// Parameters returns a copy of all parameters
func (u *URL) Parameters() map[string]string {
	out := make(map[string]string, len(u.params))
	for k, v := range u.params {
		out[k] = v
	}
	return out
}

// ApplicationName returns the "application" parameter
func (u *URL) ApplicationName() string {
	return u.params[ApplicationKey]
}

// ServiceInterface returns the "interface" parameter, falling back to the path
func (u *URL) ServiceInterface() string {
	return u.ParameterOr(InterfaceKey, u.Path)
}

// ServiceKey returns group/interface:version; blank parts are omitted
func (u *URL) ServiceKey() string {
	iface := u.ServiceInterface()
	if iface == "" {
		return ""
	}
	var sb strings.Builder
	if group := u.params[GroupKey]; group != "" {
		sb.WriteString(group)
		sb.WriteByte('/')
	}
	sb.WriteString(iface)
	if version := u.params[VersionKey]; version != "" {
		sb.WriteByte(':')
		sb.WriteString(version)
	}
	return sb.String()
}

// ToConfiguration exposes the parameters as a configuration origin
func (u *URL) ToConfiguration() config.Configuration {
	return config.NewInmemoryConfiguration("", "", config.NewPropertyMap(u.params))
}

// WithParameter returns a copy with key set to value
func (u *URL) WithParameter(key, value string) *URL {
	clone := *u
	clone.params = u.Parameters()
	clone.params[key] = value
	return &clone
}

// String renders the URL with parameters sorted by key
func (u *URL) String() string {
	var sb strings.Builder
	sb.WriteString(u.Protocol)
	sb.WriteString("://")
	if u.Username != "" {
		sb.WriteString(url.PathEscape(u.Username))
		if u.Password != "" {
			sb.WriteByte(':')
			sb.WriteString(url.PathEscape(u.Password))
		}
		sb.WriteByte('@')
	}
	sb.WriteString(u.Address())
	if u.Path != "" {
		sb.WriteByte('/')
		sb.WriteString(u.Path)
	}
	if len(u.params) > 0 {
		keys := make([]string, 0, len(u.params))
		for k := range u.params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('?')
		for i, k := range keys {
			if i > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(u.params[k]))
		}
	}
	return sb.String()
}
