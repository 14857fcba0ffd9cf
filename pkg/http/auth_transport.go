package http

import "net/http"

// bearerTransport adds "<scheme> <token>" unless the request already carries credentials
type bearerTransport struct {
	next   http.RoundTripper
	header string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") != "" {
		return t.next.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", t.header)
	return t.next.RoundTrip(authed)
}

// WithAuthToken sends token as a bearer credential
func WithAuthToken(token string) ClientOption {
	return WithAuthScheme("Bearer", token)
}

// WithAuthScheme is WithAuthToken for schemes other than Bearer. An empty token is a no-op.
func WithAuthScheme(scheme, token string) ClientOption {
	return WithTransport(func(next http.RoundTripper) http.RoundTripper {
		if token == "" {
			return next
		}
		return &bearerTransport{next: next, header: scheme + " " + token}
	})
}
