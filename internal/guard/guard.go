// Package guard holds the checks every endpoint runs before doing any work.
package guard

import (
	"github.com/wx-shi/rosetta-utxo/internal/apierr"
	"github.com/wx-shi/rosetta-utxo/internal/config"
	"github.com/wx-shi/rosetta-utxo/internal/model"
)

// CheckNetwork rejects any identifier other than the configured one. Sub
// networks are not served.
func CheckNetwork(conf *config.Config, id *model.NetworkIdentifier) error {
	if id == nil ||
		id.Blockchain != conf.Network.Blockchain ||
		id.Network != conf.Network.Network ||
		id.SubNetworkIdentifier != nil {
		return apierr.NonRetriable("wrong network")
	}
	return nil
}

// RequireOnline rejects endpoints that need the node when running offline.
func RequireOnline(conf *config.Config) error {
	if conf.IsOffline() {
		return apierr.NonRetriable("endpoint does not support offline mode")
	}
	return nil
}

// Check runs CheckNetwork and, when online is set, RequireOnline.
func Check(conf *config.Config, id *model.NetworkIdentifier, online bool) error {
	if err := CheckNetwork(conf, id); err != nil {
		return err
	}
	if online {
		return RequireOnline(conf)
	}
	return nil
}
