// Package construction implements the transaction construction steps:
// derive, preprocess, metadata, payloads, combine, hash, submit and parse.
//
// Every step is stateless. Whatever one step hands to the next travels in
// the request itself, either as options and metadata or as an encoded
// transaction string.
package construction

import (
	"errors"

	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"github.com/wx-shi/rosetta-utxo/internal/config"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"github.com/wx-shi/rosetta-utxo/internal/node"
	"github.com/wx-shi/rosetta-utxo/internal/operations"
	"go.uber.org/zap"
)

type Service struct {
	conf   *config.Config
	client node.Client
	logger *zap.Logger
}

func NewService(conf *config.Config, client node.Client, logger *zap.Logger) *Service {
	return &Service{conf: conf, client: client, logger: logger}
}

func (s *Service) hrp() string {
	return s.conf.Network.Bech32HRP
}

// sentinels whose message is reported verbatim, with the full chain in details
var reported = []error{
	ledger.ErrUnsupportedEssence,
	ledger.ErrUnsupportedInput,
	ledger.ErrUnsupportedOutput,
	ledger.ErrUnsupportedSignature,
	ledger.ErrUnsupportedUnlockBlock,
	operations.ErrMissingInputMetadata,
	operations.ErrUnsupportedType,
}

// invalid turns a validation failure into a non retriable API error.
func invalid(err error) *apierr.Error {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, sentinel := range reported {
		if errors.Is(err, sentinel) {
			if err == sentinel {
				return apierr.NonRetriable("%s", sentinel.Error())
			}
			return apierr.NonRetriable("%s", sentinel.Error()).WithDetails("cause", err.Error())
		}
	}
	return apierr.NonRetriable("%s", err.Error())
}
