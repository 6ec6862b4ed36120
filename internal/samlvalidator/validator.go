// Package samlvalidator wraps the SAML service-provider library behind a
// small verdict-based API. Callers never see raw assertions; they get a
// Result stating whether the message verified, the federation profile it
// carried, and a reason when it did not.
package samlvalidator

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/crewjam/saml"
)

// Status is the verdict for one inbound SAML message.
type Status string

const (
	// StatusVerified means the message passed validation and Profile is set.
	StatusVerified Status = "verified"

	// StatusInvalid means a message was present but failed validation.
	StatusInvalid Status = "invalid"

	// StatusNotApplicable means the request carried no SAML message at all.
	StatusNotApplicable Status = "not_applicable"
)

// Profile is the federation identity extracted from a verified message.
// SessionIndex is empty when the IdP did not issue one.
type Profile struct {
	NameID       string
	SessionIndex string
	Attributes   map[string][]string
}

// Result is the validation verdict. RequestID is set for logout requests so
// the caller can address the LogoutResponse.
type Result struct {
	Status    Status
	Profile   *Profile
	RequestID string
	Reason    string
}

func verified(profile *Profile, requestID string) Result {
	return Result{Status: StatusVerified, Profile: profile, RequestID: requestID}
}

func invalid(reason string) Result {
	return Result{Status: StatusInvalid, Reason: reason}
}

func notApplicable() Result {
	return Result{Status: StatusNotApplicable}
}

// SPValidator validates SAML messages against one service-provider
// configuration. Response signature and condition checks are delegated to
// the library; logout requests get structural validation only, since the
// session store remains the source of truth for what actually exists.
type SPValidator struct {
	sp    *saml.ServiceProvider
	clock func() time.Time
}

// Option configures an SPValidator.
type Option func(*SPValidator)

// WithValidatorClock sets the clock function for testability.
func WithValidatorClock(clock func() time.Time) Option {
	return func(v *SPValidator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// New constructs a validator over a configured service provider.
func New(sp *saml.ServiceProvider, opts ...Option) *SPValidator {
	v := &SPValidator{sp: sp, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// ValidateResponse checks the SAMLResponse posted to the ACS endpoint,
// including signature, audience and time-window conditions.
func (v *SPValidator) ValidateResponse(r *http.Request) Result {
	if err := r.ParseForm(); err != nil {
		return invalid("malformed form body")
	}
	if r.FormValue("SAMLResponse") == "" {
		return notApplicable()
	}

	assertion, err := v.sp.ParseResponse(r, nil)
	if err != nil {
		if ire, ok := err.(*saml.InvalidResponseError); ok && ire.PrivateErr != nil {
			return invalid(ire.PrivateErr.Error())
		}
		return invalid(err.Error())
	}

	profile := &Profile{Attributes: extractAttributes(assertion)}
	if assertion.Subject != nil && assertion.Subject.NameID != nil {
		profile.NameID = assertion.Subject.NameID.Value
	}
	if profile.NameID == "" {
		return invalid("assertion has no subject NameID")
	}
	for _, stmt := range assertion.AuthnStatements {
		if stmt.SessionIndex != "" {
			profile.SessionIndex = stmt.SessionIndex
			break
		}
	}
	return verified(profile, "")
}

// ValidateLogoutRequest checks an inbound IdP logout request on either
// binding: query parameter with deflate compression for redirect, plain
// base64 form field for POST.
func (v *SPValidator) ValidateLogoutRequest(r *http.Request) Result {
	var encoded string
	var deflated bool

	switch {
	case r.URL.Query().Get("SAMLRequest") != "":
		encoded = r.URL.Query().Get("SAMLRequest")
		deflated = true
	case r.Method == http.MethodPost:
		if err := r.ParseForm(); err != nil {
			return invalid("malformed form body")
		}
		encoded = r.PostFormValue("SAMLRequest")
	}
	if encoded == "" {
		return notApplicable()
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return invalid("SAMLRequest is not valid base64")
	}
	if deflated {
		raw, err = inflate(raw)
		if err != nil {
			return invalid("SAMLRequest failed to inflate")
		}
	}

	var req saml.LogoutRequest
	if err := xml.Unmarshal(raw, &req); err != nil {
		return invalid("SAMLRequest is not a LogoutRequest")
	}
	return v.checkLogoutRequest(&req)
}

func (v *SPValidator) checkLogoutRequest(req *saml.LogoutRequest) Result {
	if req.Version != "2.0" {
		return invalid("unsupported SAML version")
	}
	if req.NotOnOrAfter != nil && !req.NotOnOrAfter.After(v.clock()) {
		return invalid("logout request has expired")
	}
	if req.NameID == nil || req.NameID.Value == "" {
		return invalid("logout request has no NameID")
	}

	profile := &Profile{NameID: req.NameID.Value}
	if req.SessionIndex != nil {
		profile.SessionIndex = req.SessionIndex.Value
	}
	return verified(profile, req.ID)
}

// AuthnRedirectURL builds the IdP redirect that starts an SP-initiated
// login, carrying relayState back through the round trip.
func (v *SPValidator) AuthnRedirectURL(relayState string) (*url.URL, error) {
	return v.sp.MakeRedirectAuthenticationRequest(relayState)
}

// LogoutResponseURL builds the IdP redirect acknowledging a logout request.
func (v *SPValidator) LogoutResponseURL(requestID, relayState string) (*url.URL, error) {
	return v.sp.MakeRedirectLogoutResponse(requestID, relayState)
}

// inflate decompresses a redirect-binding message.
func inflate(data []byte) ([]byte, error) {
	reader := flate.NewReader(bytes.NewReader(data))
	defer reader.Close()
	return io.ReadAll(reader)
}

// extractAttributes flattens assertion attribute statements into a
// multi-valued map.
func extractAttributes(assertion *saml.Assertion) map[string][]string {
	attrs := make(map[string][]string)
	for _, stmt := range assertion.AttributeStatements {
		for _, attr := range stmt.Attributes {
			key := attr.Name
			if key == "" {
				key = attr.FriendlyName
			}
			var values []string
			for _, value := range attr.Values {
				values = append(values, value.Value)
			}
			attrs[key] = values
		}
	}
	return attrs
}
