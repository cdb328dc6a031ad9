package tool

import (
	"crypto/tls"
	"crypto/x509"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureSelfSignedCertificate(t *testing.T) {
	dir := t.TempDir()
	keyFilename := filepath.Join(dir, "key.pem")
	certFilename := filepath.Join(dir, "cert.pem")

	generated, err := EnsureSelfSignedCertificate(keyFilename, certFilename, "sbox", []string{"sbox.local", "192.168.1.20"})
	require.NoError(t, err)
	assert.True(t, generated)

	pair, err := tls.LoadX509KeyPair(certFilename, keyFilename)
	require.NoError(t, err)
	certificate, err := x509.ParseCertificate(pair.Certificate[0])
	require.NoError(t, err)
	assert.Equal(t, "sbox", certificate.Subject.CommonName)
	assert.Equal(t, []string{"sbox.local"}, certificate.DNSNames)
	assert.Len(t, certificate.IPAddresses, 1)

	generated, err = EnsureSelfSignedCertificate(keyFilename, certFilename, "sbox", nil)
	require.NoError(t, err)
	assert.False(t, generated)
}
