package construction

import (
	"context"

	"github.com/wx-shi/rosetta-utxo/internal/guard"
	"github.com/wx-shi/rosetta-utxo/internal/ledger"
	"github.com/wx-shi/rosetta-utxo/internal/model"
	"github.com/wx-shi/rosetta-utxo/internal/operations"
)

// Preprocess names the outputs metadata has to look up and the accounts
// that will have to sign.
func (s *Service) Preprocess(_ context.Context, req *model.ConstructionPreprocessRequest) (*model.ConstructionPreprocessResponse, error) {
	s.logger.Debug("/construction/preprocess")

	if err := guard.Check(s.conf, req.NetworkIdentifier, true); err != nil {
		return nil, err
	}

	essence, err := operations.OperationsToEssence(req.Operations, s.hrp())
	if err != nil {
		return nil, invalid(err)
	}
	if err := essence.Validate(); err != nil {
		return nil, invalid(err)
	}

	inputs := make([]string, 0, len(essence.Inputs))
	for _, in := range essence.Inputs {
		inputs = append(inputs, in.(*ledger.UTXOInput).ID().String())
	}

	return &model.ConstructionPreprocessResponse{
		Options:            &model.PreprocessOptions{UTXOInputs: inputs},
		RequiredPublicKeys: operations.Signers(req.Operations),
	}, nil
}
