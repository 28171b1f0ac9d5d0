package psbt

// TransactionInput is the economic JSON view of one transaction input.
// For wallet-owned inputs the candidate utxo metadata is carried over;
// non-wallet inputs only expose what the document itself reveals.
type TransactionInput struct {
	Txhash       string `json:"txhash"`
	PtIdx        uint32 `json:"pt_idx"`
	Satoshi      uint64 `json:"satoshi"`
	AssetID      string `json:"asset_id,omitempty"`
	Scriptpubkey string `json:"scriptpubkey,omitempty"`

	// Wallet ownership metadata, present on wallet-owned inputs only.
	Subaccount    uint32   `json:"subaccount,omitempty"`
	Pointer       uint32   `json:"pointer,omitempty"`
	Branch        uint32   `json:"branch,omitempty"`
	IsInternal    bool     `json:"is_internal,omitempty"`
	AddressType   string   `json:"address_type,omitempty"`
	UserPath      []uint32 `json:"user_path,omitempty"`
	PrevoutScript string   `json:"prevout_script,omitempty"`

	// Liquid blinding data. Blinders are required to rebuild a
	// document from the view, proofs are exposed when parsing one.
	AssetBlinder    string `json:"assetblinder,omitempty"`
	AmountBlinder   string `json:"amountblinder,omitempty"`
	ValueBlindProof string `json:"value_blind_proof,omitempty"`
	AssetBlindProof string `json:"asset_blind_proof,omitempty"`
	RedeemScript    string `json:"redeem_script,omitempty"`

	UserSighash uint32 `json:"user_sighash,omitempty"`
	SkipSigning bool   `json:"skip_signing,omitempty"`
	// FeeEstimationOnly marks inputs whose script/witness were
	// synthesized from dummy signatures to measure the transaction
	// size. Such data never verifies and must not be broadcast.
	FeeEstimationOnly bool   `json:"fee_estimation_only,omitempty"`
	Error             string `json:"error,omitempty"`

	belongsToWallet bool
}

// BelongsToWallet returns whether the input spends a wallet utxo.
func (in *TransactionInput) BelongsToWallet() bool {
	return in.belongsToWallet
}

// TransactionOutput is the economic JSON view of one transaction
// output. A Liquid fee output has an empty scriptpubkey.
type TransactionOutput struct {
	Satoshi      uint64 `json:"satoshi"`
	AssetID      string `json:"asset_id,omitempty"`
	Scriptpubkey string `json:"scriptpubkey"`
	Address      string `json:"address,omitempty"`

	// Wallet ownership metadata, present on wallet-owned outputs only.
	Subaccount  uint32   `json:"subaccount,omitempty"`
	Pointer     uint32   `json:"pointer,omitempty"`
	Branch      uint32   `json:"branch,omitempty"`
	IsInternal  bool     `json:"is_internal,omitempty"`
	AddressType string   `json:"address_type,omitempty"`
	UserPath    []uint32 `json:"user_path,omitempty"`

	IsChange *bool `json:"is_change,omitempty"`

	// Liquid confidential data of fully blinded outputs.
	Commitment      string `json:"commitment,omitempty"`
	AssetTag        string `json:"asset_tag,omitempty"`
	RangeProof      string `json:"range_proof,omitempty"`
	SurjProof       string `json:"surj_proof,omitempty"`
	BlindingKey     string `json:"blinding_key,omitempty"`
	EphPublicKey    string `json:"eph_public_key,omitempty"`
	ValueBlindProof string `json:"value_blind_proof,omitempty"`
	AssetBlindProof string `json:"asset_blind_proof,omitempty"`

	// Unblinded factors of wallet-owned confidential outputs. Required
	// to rebuild a document from the view.
	AssetBlinder  string `json:"assetblinder,omitempty"`
	AmountBlinder string `json:"amountblinder,omitempty"`

	IsConfidential        *bool  `json:"is_confidential,omitempty"`
	UnconfidentialAddress string `json:"unconfidential_address,omitempty"`

	Error string `json:"error,omitempty"`

	belongsToWallet bool
}

// BelongsToWallet returns whether the output pays to a wallet script.
func (out *TransactionOutput) BelongsToWallet() bool {
	return out.belongsToWallet
}

// TransactionDetails is the full economic JSON view of a document.
type TransactionDetails struct {
	Transaction        string               `json:"transaction"`
	TransactionInputs  []*TransactionInput  `json:"transaction_inputs"`
	TransactionOutputs []*TransactionOutput `json:"transaction_outputs"`
	Fee                uint64               `json:"fee"`
	NetworkFee         uint64               `json:"network_fee"`
	FeeRate            uint64               `json:"fee_rate"`
	Txhash             string               `json:"txhash"`
	IsBlinded          bool                 `json:"is_blinded,omitempty"`
	IsPartial          bool                 `json:"is_partial"`
	UtxoStrategy       string               `json:"utxo_strategy"`
	Error              string               `json:"error,omitempty"`
}

// CandidateUtxos is the caller-supplied set of wallet utxos used to
// resolve input ownership. Either the flat List (deprecated) or the
// asset-keyed ByAsset map may be populated.
type CandidateUtxos struct {
	List    []*TransactionInput
	ByAsset map[string][]*TransactionInput
}

// take searches the candidates for a (txhash, vout) match. A match is
// removed from the set so the same utxo cannot resolve two inputs.
func (u *CandidateUtxos) take(txhash string, vout uint32) *TransactionInput {
	if u == nil {
		return nil
	}
	if found := takeMatchingUtxo(u.List, txhash, vout); found != nil {
		return found
	}
	for asset, utxos := range u.ByAsset {
		if found := takeMatchingUtxo(utxos, txhash, vout); found != nil {
			if found.AssetID == "" {
				found.AssetID = asset
			}
			return found
		}
	}
	return nil
}

func takeMatchingUtxo(
	utxos []*TransactionInput, txhash string, vout uint32,
) *TransactionInput {
	for i, utxo := range utxos {
		if utxo == nil {
			continue
		}
		if utxo.PtIdx == vout && utxo.Txhash == txhash {
			utxos[i] = nil
			return utxo
		}
	}
	return nil
}
