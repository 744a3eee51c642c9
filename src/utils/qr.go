package utils

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"etix/src/types"

	"github.com/yeqown/go-qrcode"
)

var ErrBadQRData = errors.New("malformed qr data")

// SignQRPayload computes the detached hex HMAC-SHA256 over the canonical
// JSON encoding of the payload.
func SignQRPayload(key []byte, payload types.QRPayload) string {
	raw, _ := json.Marshal(payload)
	mac := hmac.New(sha256.New, key)
	mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil))
}

// EncodeTicketQR wraps payload and signature into the JSON envelope that
// gets rendered into the QR image.
func EncodeTicketQR(payload types.QRPayload, signature string) string {
	env := types.QREnvelope{Payload: payload, Signature: signature}
	raw, _ := json.Marshal(&env)
	return string(raw)
}

// DecodeTicketQR strictly parses a scanned envelope. Unknown fields or
// trailing garbage fail closed.
func DecodeTicketQR(data string) (*types.QREnvelope, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	var env types.QREnvelope
	if err := dec.Decode(&env); err != nil {
		return nil, ErrBadQRData
	}
	if dec.More() {
		return nil, ErrBadQRData
	}
	if env.Payload.V != 1 || env.Payload.TicketID == "" {
		return nil, ErrBadQRData
	}
	return &env, nil
}

// VerifyQRSignature recomputes the payload HMAC and compares it against
// the supplied signature in constant time.
func VerifyQRSignature(key []byte, payload types.QRPayload, signature string) bool {
	supplied, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	raw, _ := json.Marshal(payload)
	mac := hmac.New(sha256.New, key)
	mac.Write(raw)
	return hmac.Equal(mac.Sum(nil), supplied)
}

// SaveTicketQRImage renders the envelope to a JPEG on disk.
func SaveTicketQRImage(data string, filepath string) error {
	qrc, err := qrcode.New(data)
	if err != nil {
		return err
	}
	return qrc.Save(filepath)
}
