// Package identity parses the API credential configured for a Platform into
// tenant/user identity, per spec.md §4.2/§6: a base64-encoded PKCS#12
// certificate carries tenantId (Organization) and userId (Organizational
// Unit) in its subject; an opaque credential carries neither, and tenant/user
// must come from memo or environment instead.
package identity

import (
	"encoding/base64"

	"golang.org/x/crypto/pkcs12"

	"github.com/xiansai/agent-sdk-go/sdkerr"
)

// Identity is the parsed tenant/user identity derived from an API credential.
type Identity struct {
	// TenantID is the Organization (O) field of the certificate subject.
	// Empty when the credential is opaque.
	TenantID string
	// UserID is the Organizational Unit (OU) field of the certificate
	// subject. Empty when the credential is opaque.
	UserID string
	// Opaque is true when the credential could not be parsed as a
	// certificate and tenant/user must be supplied out-of-band.
	Opaque bool
}

// Credential implements transport.Credential for a raw API credential,
// independent of whether it parses as a PKCS#12 certificate.
type Credential struct {
	raw string
}

// NewCredential wraps a raw API credential (opaque key or base64 PKCS#12
// certificate) for use as a transport.Credential.
func NewCredential(raw string) Credential { return Credential{raw: raw} }

// AuthHeader returns the header name/value pair every Transport request
// carries.
func (c Credential) AuthHeader() (string, string) {
	return "Authorization", "Bearer " + c.raw
}

// Parse derives Identity from raw. If raw decodes as base64 PKCS#12 (PFX),
// tenantId/userId are extracted from the leaf certificate's
// Organization/OrganizationalUnit subject fields. Otherwise raw is treated
// as an opaque credential (Identity.Opaque == true, no error).
//
// PKCS#12 encrypts its contents with a password; per spec.md §6 the SDK
// credential format does not carry one, so Parse tries the conventional
// empty password before falling back to treating raw as opaque.
func Parse(raw string) (Identity, error) {
	der, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return Identity{Opaque: true}, nil
	}

	_, cert, err := pkcs12.Decode(der, "")
	if err != nil {
		return Identity{Opaque: true}, nil
	}

	var tenantID, userID string
	if len(cert.Subject.Organization) > 0 {
		tenantID = cert.Subject.Organization[0]
	}
	if len(cert.Subject.OrganizationalUnit) > 0 {
		userID = cert.Subject.OrganizationalUnit[0]
	}
	if tenantID == "" {
		return Identity{}, sdkerr.New(sdkerr.Configuration, "identity.Parse", errNoOrganization)
	}
	return Identity{TenantID: tenantID, UserID: userID}, nil
}

type certParseError string

func (e certParseError) Error() string { return string(e) }

var errNoOrganization = certParseError("certificate credential is missing an Organization (tenantId) field")
