// Package uploads signs client-side upload requests for ImageKit. The server
// never proxies video bytes; it hands the browser a short-lived signature and
// records metadata after the upload completes.
package uploads

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Signer struct {
	publicKey  string
	privateKey string
	ttl        time.Duration
}

func NewSigner(publicKey, privateKey string) *Signer {
	return &Signer{
		publicKey:  publicKey,
		privateKey: privateKey,
		ttl:        30 * time.Minute,
	}
}

// AuthParams matches the shape ImageKit's browser SDK expects.
type AuthParams struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
	PublicKey string `json:"publicKey"`
}

// Sign mints one single-use upload authorization: HMAC-SHA1 over
// token+expire, keyed with the private key, hex encoded.
func (s *Signer) Sign(now time.Time) AuthParams {
	token := uuid.NewString()
	expire := now.Add(s.ttl).Unix()

	mac := hmac.New(sha1.New, []byte(s.privateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))

	return AuthParams{
		Token:     token,
		Expire:    expire,
		Signature: hex.EncodeToString(mac.Sum(nil)),
		PublicKey: s.publicKey,
	}
}
