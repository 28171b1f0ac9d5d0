package config

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// NetworkKey selects the network: mainnet, testnet, liquid or
	// liquidtestnet
	NetworkKey = "NETWORK"
	// LogLevelKey sets the logging verbosity. For reference on the values
	// https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// PolicyAssetKey overrides the network policy asset, useful on
	// custom regtest setups
	PolicyAssetKey = "POLICY_ASSET"

	NetworkMainnet       = "mainnet"
	NetworkTestnet       = "testnet"
	NetworkLiquid        = "liquid"
	NetworkLiquidTestnet = "liquidtestnet"

	// LiquidPolicyAsset is the L-BTC asset id on the Liquid mainnet
	LiquidPolicyAsset = "6f0279e9ed041c3d710a9f57d0c02928416460c4b722ae3457a11eec381c526d"
	// LiquidTestnetPolicyAsset is the L-BTC asset id on the Liquid testnet
	LiquidTestnetPolicyAsset = "144c654344aa716d6f3abcc1ca90e5641e4e2a7f633bc09fe3baf64585819a49"
)

var vip *viper.Viper

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("GDK")
	vip.AutomaticEnv()

	vip.SetDefault(NetworkKey, NetworkLiquid)
	vip.SetDefault(LogLevelKey, 4)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	log.SetLevel(log.Level(GetInt(LogLevelKey)))
	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// IsLiquid returns whether the configured network is an Elements one.
func IsLiquid() bool {
	net := GetString(NetworkKey)
	return net == NetworkLiquid || net == NetworkLiquidTestnet
}

// IsMainnet returns whether the configured network is a production one.
func IsMainnet() bool {
	net := GetString(NetworkKey)
	return net == NetworkMainnet || net == NetworkLiquid
}

// GetPolicyAsset returns the asset id fees are paid with on the
// configured network. Empty for Bitcoin networks.
func GetPolicyAsset() string {
	if !IsLiquid() {
		return ""
	}
	if asset := GetString(PolicyAssetKey); asset != "" {
		return asset
	}
	if IsMainnet() {
		return LiquidPolicyAsset
	}
	return LiquidTestnetPolicyAsset
}

func validate() error {
	switch net := GetString(NetworkKey); net {
	case NetworkMainnet, NetworkTestnet, NetworkLiquid, NetworkLiquidTestnet:
	default:
		return fmt.Errorf("unknown network: %s", net)
	}
	return nil
}
