package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/pthm-cable/poopdodge/reward"
)

// StaticConnector connects to a fixed address.
type StaticConnector struct {
	Address string
}

func (c StaticConnector) Connect(context.Context) (string, error) {
	if c.Address == "" {
		return "", errors.New("no wallet address configured")
	}
	pk, err := solana.PublicKeyFromBase58(c.Address)
	if err != nil {
		return "", fmt.Errorf("invalid wallet address %q: %w", c.Address, err)
	}
	return pk.String(), nil
}

// KeyfileConnector connects to the public key of a solana-keygen keypair file.
type KeyfileConnector struct {
	Path string
}

func (c KeyfileConnector) Connect(context.Context) (string, error) {
	if c.Path == "" {
		return "", errors.New("no wallet keypair configured")
	}
	key, err := reward.LoadKeypair(c.Path)
	if err != nil {
		return "", err
	}
	return key.PublicKey().String(), nil
}

// ChooseConnector prefers an explicit address over a keypair file.
// Returns nil when neither is set.
func ChooseConnector(address, keypairPath string) Connector {
	switch {
	case address != "":
		return StaticConnector{Address: address}
	case keypairPath != "":
		return KeyfileConnector{Path: keypairPath}
	}
	return nil
}
