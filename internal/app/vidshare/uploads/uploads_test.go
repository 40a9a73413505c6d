package uploads

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"testing"
	"time"
)

func TestSign(t *testing.T) {
	signer := NewSigner("public_abc", "private_xyz")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	params := signer.Sign(now)

	if params.Token == "" {
		t.Fatal("empty token")
	}
	if params.PublicKey != "public_abc" {
		t.Fatalf("publicKey = %q", params.PublicKey)
	}
	if want := now.Add(30 * time.Minute).Unix(); params.Expire != want {
		t.Fatalf("expire = %d, want %d", params.Expire, want)
	}

	mac := hmac.New(sha1.New, []byte("private_xyz"))
	mac.Write([]byte(params.Token + strconv.FormatInt(params.Expire, 10)))
	if want := hex.EncodeToString(mac.Sum(nil)); params.Signature != want {
		t.Fatalf("signature = %q, want %q", params.Signature, want)
	}
}

func TestSignTokensAreUnique(t *testing.T) {
	signer := NewSigner("pub", "priv")
	now := time.Now()
	a := signer.Sign(now)
	b := signer.Sign(now)
	if a.Token == b.Token {
		t.Fatal("tokens must be single use")
	}
}
