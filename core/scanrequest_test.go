package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleScanRequest() *ScanRequest {
	return &ScanRequest{
		CallbackURL:  "https://example.com/auth/callback",
		Description:  "Sign in with your identity wallet",
		AppID:        "talaria-demo",
		PublicKey:    "04deadbeef",
		Signature:    strings.Repeat("ab", 64),
		DID:          "did:talaria:issuer",
		RandomNumber: "170141183460469231731687303715884105727",
		AppName:      "Talaria",
		RequestInfo:  []string{"nickname", "email"},
	}
}

func TestScanRequestURIRoundTrip(t *testing.T) {
	original := sampleScanRequest()

	uri := original.URI()
	assert.True(t, strings.HasPrefix(uri, "didauth://request?"))

	parsed, err := ParseScanRequest(uri)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestScanRequestRequestInfoCommaJoined(t *testing.T) {
	req := sampleScanRequest()
	uri := req.URI()

	assert.Contains(t, uri, "RequestInfo=nickname%2Cemail")
}

func TestParseScanRequestRejectsForeignScheme(t *testing.T) {
	_, err := ParseScanRequest("https://example.com/?RandomNumber=1")
	assert.Error(t, err)
}
