package core

import (
	"fmt"
	"net/url"
	"strings"
)

// Scheme is the custom URI scheme the wallet registers a handler for.
const Scheme = "didauth"

const scanRequestHost = "request"

// ScanRequest is the signed descriptor handed to the out-of-band wallet,
// rendered as a QR code by the web client. The field names are the wire
// names used in the query string.
type ScanRequest struct {
	CallbackURL  string   // Where the wallet posts the signed assertion
	Description  string   // Human-readable prompt shown by the wallet
	AppID        string   // Application identity covered by Signature
	PublicKey    string   // Issuer public key, uncompressed hex
	Signature    string   // Issuer signature over AppID, r||s hex
	DID          string   // Issuer DID
	RandomNumber string   // State token binding assertion to challenge
	AppName      string   // Display name shown by the wallet
	RequestInfo  []string // Profile attributes the app asks the wallet for
}

// URI encodes the descriptor as a didauth:// URI suitable for QR rendering.
func (r *ScanRequest) URI() string {
	q := url.Values{}
	q.Set("CallbackUrl", r.CallbackURL)
	q.Set("Description", r.Description)
	q.Set("AppID", r.AppID)
	q.Set("PublicKey", r.PublicKey)
	q.Set("Signature", r.Signature)
	q.Set("DID", r.DID)
	q.Set("RandomNumber", r.RandomNumber)
	q.Set("AppName", r.AppName)
	q.Set("RequestInfo", strings.Join(r.RequestInfo, ","))

	return fmt.Sprintf("%s://%s?%s", Scheme, scanRequestHost, q.Encode())
}

// ParseScanRequest decodes a didauth:// URI back into a descriptor.
func ParseScanRequest(raw string) (*ScanRequest, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scan request URI: %w", err)
	}

	if u.Scheme != Scheme {
		return nil, fmt.Errorf("unexpected scheme %q", u.Scheme)
	}

	q := u.Query()
	req := &ScanRequest{
		CallbackURL:  q.Get("CallbackUrl"),
		Description:  q.Get("Description"),
		AppID:        q.Get("AppID"),
		PublicKey:    q.Get("PublicKey"),
		Signature:    q.Get("Signature"),
		DID:          q.Get("DID"),
		RandomNumber: q.Get("RandomNumber"),
		AppName:      q.Get("AppName"),
	}

	if info := q.Get("RequestInfo"); info != "" {
		req.RequestInfo = strings.Split(info, ",")
	}

	return req, nil
}
