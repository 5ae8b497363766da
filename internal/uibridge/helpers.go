package uibridge

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/walletd/core/internal/walleterrors"
)

// decodeHexOrUTF8 accepts personal_sign's message argument in either form
// dApps commonly send it: a 0x-prefixed hex string, or plain UTF-8 text.
func decodeHexOrUTF8(message string) ([]byte, error) {
	if strings.HasPrefix(message, "0x") || strings.HasPrefix(message, "0X") {
		data, err := hex.DecodeString(message[2:])
		if err != nil {
			return nil, walleterrors.Wrap(walleterrors.ReasonInvalidParams, err, "decode hex message")
		}
		return data, nil
	}
	return []byte(message), nil
}

func hexString(b []byte) string {
	return hex.EncodeToString(b)
}

// hashTypedData reduces an EIP-712 typed-data JSON payload to the digest
// keyring.Service.SignTypedData expects. This is a sha256 of the
// canonical struct bytes rather than the full EIP-712 domain-separator
// encoding (keccak256 over typeHash || domainSeparator || structHash):
// no EIP-712 encoder ships in this module's dependency set, and adding
// one is out of scope for the namespace adapters this wallet core talks
// through.
func hashTypedData(typedData []byte) []byte {
	sum := sha256.Sum256(typedData)
	return sum[:]
}

// trimHexPrefix converts a "0x<hex>" chain id (as EIP-3085/3326 carry it)
// to the bare decimal string used to build a chainRef ("eip155:1");
// chainregistry.Chain.ChainID itself keeps the "0x" form.
func trimHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if n, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
			return strconv.FormatUint(n, 10)
		}
	}
	return s
}
