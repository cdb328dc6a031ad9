package tool

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"
)

// EnsureSelfSignedCertificate generates a key and a self-signed server certificate valid for
// hostnames, unless both files already exist. It reports whether new files were written.
func EnsureSelfSignedCertificate(keyFilename, certFilename, commonName string, hostnames []string) (bool, error) {
	keyExists, err := IsFileExists(keyFilename)
	if err != nil {
		return false, err
	}
	certExists, err := IsFileExists(certFilename)
	if err != nil {
		return false, err
	}
	if keyExists && certExists {
		return false, nil
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return false, fmt.Errorf("generate key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return false, fmt.Errorf("generate serial number: %w", err)
	}

	notBefore := time.Now()
	template := x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             notBefore,
		NotAfter:              notBefore.AddDate(10, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, hostname := range hostnames {
		if ip := net.ParseIP(hostname); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else if hostname != "" {
			template.DNSNames = append(template.DNSNames, hostname)
		}
	}

	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return false, fmt.Errorf("create certificate: %w", err)
	}
	rawKey, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return false, fmt.Errorf("marshal key: %w", err)
	}

	if err = writePem(keyFilename, "EC PRIVATE KEY", rawKey, 0600); err != nil {
		return false, err
	}
	if err = writePem(certFilename, "CERTIFICATE", derBytes, 0644); err != nil {
		return false, err
	}
	return true, nil
}

func IsFileExists(filename string) (bool, error) {
	_, err := os.Stat(filename)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func writePem(filename string, blockType string, data []byte, perm os.FileMode) error {
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if err = pem.Encode(file, &pem.Block{Type: blockType, Bytes: data}); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
