package main

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Instruction data is base58 in explorers and RPC responses, so that is the default.
const defaultEncoding = "base58"

func decodeBytes(s, encoding string) ([]byte, error) {
	s = strings.TrimSpace(s)
	switch encoding {
	case "base58":
		return base58.Decode(s)
	case "base64":
		return base64.StdEncoding.DecodeString(s)
	case "hex":
		return hex.DecodeString(strings.TrimPrefix(s, "0x"))
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}

func encodeBytes(b []byte, encoding string) (string, error) {
	switch encoding {
	case "base58":
		return base58.Encode(b), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(b), nil
	case "hex":
		return hex.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("unknown encoding %q", encoding)
	}
}
