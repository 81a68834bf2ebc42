package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/tdex-network/xpub-balance/internal/core/application"
	"github.com/tdex-network/xpub-balance/pkg/wallet"
)

const (
	// EsploraURLKey is the base url of the Esplora REST API used to fetch
	// address summaries
	EsploraURLKey = "ESPLORA_URL"
	// NetworkKey is the network whose addresses are derived. Either "bitcoin"
	// or "liquid"
	NetworkKey = "NETWORK"
	// NKey is the number of indexes of both the receive and change chains
	// considered for the total balance
	NKey = "N"
	// StartKey is the first index of the displayed range
	StartKey = "START"
	// EndKey is the last index of the displayed range
	EndKey = "END"
	// ConcurrencyKey is the max number of address queries in flight
	ConcurrencyKey = "CONCURRENCY"
	// RequestTimeoutKey are the seconds to wait for an HTTP response before
	// timing out
	RequestTimeoutKey = "REQUEST_TIMEOUT"
	// RateLimitKey caps the requests per second sent to the explorer, 0 means
	// no limit
	RateLimitKey = "RATE_LIMIT"
	// MempoolKey includes unconfirmed transactions in balances and counters
	MempoolKey = "MEMPOOL"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"

	defaultEsploraURL = "https://blockstream.info/api"
)

var vip *viper.Viper

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("XPUB_BALANCE")
	vip.AutomaticEnv()

	vip.SetDefault(EsploraURLKey, defaultEsploraURL)
	vip.SetDefault(NetworkKey, string(wallet.NetworkBitcoin))
	vip.SetDefault(NKey, 20)
	vip.SetDefault(StartKey, 0)
	vip.SetDefault(EndKey, 9)
	vip.SetDefault(ConcurrencyKey, 8)
	vip.SetDefault(RequestTimeoutKey, 15)
	vip.SetDefault(RateLimitKey, 0)
	vip.SetDefault(MempoolKey, false)
	vip.SetDefault(LogLevelKey, int(log.WarnLevel))

	if err := Validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	return nil
}

// Set overrides the value of the given key, ie. with a command line flag.
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint32(key string) uint32 {
	return vip.GetUint32(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDuration(key string) time.Duration {
	return time.Duration(GetInt(key)) * time.Second
}

func GetNetwork() wallet.Network {
	return wallet.Network(strings.ToLower(GetString(NetworkKey)))
}

// ApplicationConfig returns the configuration of the application services.
func ApplicationConfig() *application.Config {
	return &application.Config{
		ExplorerURL:       GetString(EsploraURLKey),
		RequestTimeout:    GetDuration(RequestTimeoutKey),
		RequestsPerSecond: GetInt(RateLimitKey),
		Concurrency:       GetInt(ConcurrencyKey),
		IncludeMempool:    GetBool(MempoolKey),
	}
}

// QueryOpts returns the options of a balance query for the given key.
func QueryOpts(extendedKey string, change bool) application.QueryOpts {
	return application.QueryOpts{
		ExtendedKey: extendedKey,
		Network:     GetNetwork(),
		Start:       GetUint32(StartKey),
		End:         GetUint32(EndKey),
		N:           GetUint32(NKey),
		Change:      change,
	}
}

// Validate checks the current configuration values.
func Validate() error {
	esploraURL := GetString(EsploraURLKey)
	if len(strings.TrimSpace(esploraURL)) <= 0 {
		return fmt.Errorf("missing esplora url")
	}
	u, err := url.Parse(esploraURL)
	if err != nil {
		return fmt.Errorf("invalid esplora url: %s", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("esplora url must use either http or https protocol")
	}

	switch GetNetwork() {
	case wallet.NetworkBitcoin, wallet.NetworkLiquid:
	default:
		return fmt.Errorf(
			"%s must be either %s or %s",
			NetworkKey, wallet.NetworkBitcoin, wallet.NetworkLiquid,
		)
	}

	for _, key := range []string{NKey, StartKey, EndKey} {
		v := vip.GetInt64(key)
		if v < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
		if v > int64(wallet.MaxIndex) {
			return fmt.Errorf("%s must not exceed %d", key, wallet.MaxIndex)
		}
	}

	if GetInt(ConcurrencyKey) < 1 {
		return fmt.Errorf("%s must be at least 1", ConcurrencyKey)
	}
	if GetInt(RequestTimeoutKey) < 1 {
		return fmt.Errorf("%s must be at least 1 second", RequestTimeoutKey)
	}
	if GetInt(RateLimitKey) < 0 {
		return fmt.Errorf("%s must not be negative", RateLimitKey)
	}

	logLevel := GetInt(LogLevelKey)
	if logLevel < int(log.PanicLevel) || logLevel > int(log.TraceLevel) {
		return fmt.Errorf(
			"%s must be in range [%d, %d]",
			LogLevelKey, log.PanicLevel, log.TraceLevel,
		)
	}

	return nil
}
