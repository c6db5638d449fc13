package transport

import (
	"net/http"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(req *http.Request, apiKey string)
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ *http.Request, _ string) {}

// BearerAuth implements Bearer token authentication.
type BearerAuth struct{}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
}

// HeaderAuth implements custom header authentication.
type HeaderAuth struct {
	Header string
}

// Apply implements the Authenticator interface for HeaderAuth.
func (a *HeaderAuth) Apply(req *http.Request, apiKey string) {
	req.Header.Set(a.Header, apiKey)
}

// QueryAuth implements API key as query parameter authentication.
type QueryAuth struct {
	Param string
}

// Apply implements the Authenticator interface for QueryAuth.
func (a *QueryAuth) Apply(req *http.Request, apiKey string) {
	if req.URL == nil {
		return
	}

	query := req.URL.Query()
	query.Set(a.Param, apiKey)
	req.URL.RawQuery = query.Encode()
}

// Scheme is the prefix SchemeAuth puts before the credential.
type Scheme string

// Known authentication schemes.
const (
	SchemeBearer Scheme = "Bearer"
	SchemeBasic  Scheme = "Basic"
	SchemeToken  Scheme = "token"
	SchemeDirect Scheme = "Direct"
)

// SchemeAuth sends the credential in a header with a scheme prefix.
// An empty header means Authorization.
type SchemeAuth struct {
	Header string
	Scheme Scheme
}

// Apply implements the Authenticator interface for SchemeAuth.
func (a *SchemeAuth) Apply(req *http.Request, apiKey string) {
	header := a.Header
	if header == "" {
		header = "Authorization"
	}

	var value string
	switch a.Scheme {
	case SchemeBearer, SchemeBasic, SchemeToken:
		value = string(a.Scheme) + " " + apiKey
	default:
		// Direct and unknown schemes send the bare credential.
		value = apiKey
	}

	req.Header.Set(header, value)
}
