package psbt

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/vulpemventures/go-elements/network"
	"github.com/vulpemventures/go-elements/payment"
)

func chainParamsFor(net Network) *chaincfg.Params {
	if net.Mainnet {
		return &chaincfg.MainNetParams
	}
	return &chaincfg.TestNet3Params
}

func liquidNetworkFor(net Network) *network.Network {
	if net.Mainnet {
		return &network.Liquid
	}
	return &network.Testnet
}

// addressFromScript reconstructs the address paying to the given
// scriptpubkey. On Liquid a non-nil blinding pubkey yields the
// confidential encoding.
func addressFromScript(
	net Network, script, blindingPubkey []byte,
) (string, error) {
	if !net.Liquid {
		_, addrs, _, err := txscript.ExtractPkScriptAddrs(
			script, chainParamsFor(net),
		)
		if err != nil || len(addrs) == 0 {
			return "", err
		}
		return addrs[0].EncodeAddress(), nil
	}

	var blindingKey *btcec.PublicKey
	if len(blindingPubkey) > 0 {
		key, err := btcec.ParsePubKey(blindingPubkey)
		if err != nil {
			return "", err
		}
		blindingKey = key
	}
	pay, err := payment.FromScript(script, liquidNetworkFor(net), blindingKey)
	if err != nil {
		return "", err
	}

	confidential := blindingKey != nil
	switch {
	case isP2wpkhScript(script):
		if confidential {
			return pay.ConfidentialWitnessPubKeyHash()
		}
		return pay.WitnessPubKeyHash()
	case isP2wshScript(script):
		if confidential {
			return pay.ConfidentialWitnessScriptHash()
		}
		return pay.WitnessScriptHash()
	case isP2pkhScript(script):
		if confidential {
			return pay.ConfidentialPubKeyHash()
		}
		return pay.PubKeyHash()
	case isP2shScript(script):
		if confidential {
			return pay.ConfidentialScriptHash()
		}
		return pay.ScriptHash()
	default:
		return "", nil
	}
}

func isP2wpkhScript(script []byte) bool {
	return len(script) == 22 && script[0] == 0x00 && script[1] == 0x14
}

func isP2wshScript(script []byte) bool {
	return len(script) == 34 && script[0] == 0x00 && script[1] == 0x20
}

func isP2pkhScript(script []byte) bool {
	return len(script) == 25 && script[0] == txscript.OP_DUP &&
		script[1] == txscript.OP_HASH160 && script[2] == 0x14 &&
		script[23] == txscript.OP_EQUALVERIFY &&
		script[24] == txscript.OP_CHECKSIG
}

func isP2shScript(script []byte) bool {
	return len(script) == 23 && script[0] == txscript.OP_HASH160 &&
		script[1] == 0x14 && script[22] == txscript.OP_EQUAL
}

// confidentialize rewrites the output's address to its confidential
// encoding using the given blinding pubkey, keeping the unconfidential
// one aside.
func confidentialize(
	net Network, out *TransactionOutput, script, blindingPubkey []byte,
) {
	confidentialAddr, err := addressFromScript(net, script, blindingPubkey)
	if err != nil || confidentialAddr == "" {
		return
	}
	out.UnconfidentialAddress = out.Address
	out.Address = confidentialAddr
	isConfidential := true
	out.IsConfidential = &isConfidential
}
