package transactionutil

import (
	"github.com/AreaLayer/gdk/pkg/bufferutil"
	"github.com/vulpemventures/go-elements/confidential"
	"github.com/vulpemventures/go-elements/transaction"
)

type UnblindedResult struct {
	AssetHash    string
	Value        uint64
	AssetBlinder []byte
	ValueBlinder []byte
}

// UnblindOutput reveals the asset, value and blinding factors of a
// confidential output with the given blinding private key. An explicit
// output is returned as-is with nil blinders.
func UnblindOutput(
	utxo *transaction.TxOutput,
	blindKey []byte,
) (*UnblindedResult, bool) {
	if !utxo.IsConfidential() {
		return &UnblindedResult{
			AssetHash: bufferutil.AssetHashFromBytes(utxo.Asset),
			Value:     bufferutil.ValueFromBytes(utxo.Value),
		}, true
	}

	revealed, err := confidential.UnblindOutputWithKey(utxo, blindKey)
	if err != nil {
		return nil, false
	}
	return &UnblindedResult{
		AssetHash:    bufferutil.TxIDFromBytes(revealed.Asset),
		Value:        revealed.Value,
		AssetBlinder: revealed.AssetBlindingFactor,
		ValueBlinder: revealed.ValueBlindingFactor,
	}, true
}
