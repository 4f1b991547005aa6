package sigverify

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SplitSignature separates a scriptSig/witness signature push into its
// DER-encoded body and trailing sighash-type byte. Since SigHashAll is the
// only flag this implementation honors, any other trailing byte is rejected
// rather than silently accepted.
func SplitSignature(sigWithHashType []byte) (sigDER []byte, hashType byte, err error) {
	if len(sigWithHashType) < 2 {
		return nil, 0, fmt.Errorf("signature too short: %d bytes", len(sigWithHashType))
	}
	hashType = sigWithHashType[len(sigWithHashType)-1]
	if uint32(hashType) != SigHashAll {
		return nil, hashType, fmt.Errorf("unsupported sighash type 0x%02x", hashType)
	}
	return sigWithHashType[:len(sigWithHashType)-1], hashType, nil
}

// VerifyECDSA verifies a DER-encoded ECDSA signature against a secp256k1
// public key and a message digest.
func VerifyECDSA(sigDER, pubkeyBytes []byte, digest [32]byte) bool {
	pub, err := secp256k1.ParsePubKey(pubkeyBytes)
	if err != nil {
		return false
	}
	sig, err := ecdsa.ParseDERSignature(sigDER)
	if err != nil {
		return false
	}
	return sig.Verify(digest[:], pub)
}
