package corefmt

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/zintix-labs/chainspin/errs"
)

func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode base64 failed")
	}
	return b, err
}

func EncodeBase64URL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func DecodeBase64URL(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode base64url failed")
	}
	return b, err
}

func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

func DecodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errs.Wrap(err, "decode hex failed")
	}
	return b, err
}

// EncodeBetKey 把 bet key 轉成穩定可複製的文字形式（hex）。
// 用於 log、API 回傳與人工比對。
func EncodeBetKey(key []byte) string {
	return EncodeHex(key)
}

// DecodeBetKey 是 EncodeBetKey 的反向。空字串視為錯誤。
func DecodeBetKey(s string) ([]byte, error) {
	if s == "" {
		return nil, errs.NewWarn("bet key is empty")
	}
	return DecodeHex(s)
}

// EncodeSeed 把 32 位元組區塊種子轉成 JSON 安全的文字形式（base64url）。
func EncodeSeed(seed []byte) string {
	return EncodeBase64URL(seed)
}

// DecodeSeed 是 EncodeSeed 的反向。
func DecodeSeed(s string) ([]byte, error) {
	return DecodeBase64URL(s)
}
