package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// KeyValueABI is the ABI of the on-chain key/value contract.
const KeyValueABI = `[
	{"type":"function","name":"isAvailable","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getData","stateMutability":"view","inputs":[{"name":"key","type":"string"}],"outputs":[{"name":"","type":"bytes"}]},
	{"type":"function","name":"setData","stateMutability":"nonpayable","inputs":[{"name":"key","type":"string"},{"name":"value","type":"bytes"}],"outputs":[]}
]`

// ErrReadOnly is returned by SetData when no signing key was configured.
var ErrReadOnly = errors.New("contract store is read-only: no signing key configured")

// EthBackend is what EthereumStore needs from a chain connection.
type EthBackend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// EthereumStore talks to the key/value contract deployed on an EVM chain.
type EthereumStore struct {
	backend  EthBackend
	contract *bind.BoundContract
	address  common.Address
	auth     *bind.TransactOpts
	closer   func()
	logger   *zap.Logger
}

// NewEthereumStore binds the contract at address. auth may be nil for a read-only store.
func NewEthereumStore(backend EthBackend, address common.Address, auth *bind.TransactOpts, logger *zap.Logger) (*EthereumStore, error) {
	parsed, err := abi.JSON(strings.NewReader(KeyValueABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EthereumStore{
		backend:  backend,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
		address:  address,
		auth:     auth,
		logger:   logger,
	}, nil
}

// DialEthereumStore connects to rpcURL and binds the contract. privateKeyHex may be
// empty for read-only access. A non-zero chainID must match the node's chain.
func DialEthereumStore(ctx context.Context, rpcURL, contractAddress, privateKeyHex string, chainID int64, logger *zap.Logger) (*EthereumStore, error) {
	if !common.IsHexAddress(contractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", contractAddress)
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}

	nodeChainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}
	if chainID != 0 && nodeChainID.Cmp(big.NewInt(chainID)) != 0 {
		client.Close()
		return nil, fmt.Errorf("chain id mismatch: node reports %s, configured %d", nodeChainID, chainID)
	}

	var auth *bind.TransactOpts
	if privateKeyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("invalid signing key: %w", err)
		}
		auth, err = bind.NewKeyedTransactorWithChainID(key, nodeChainID)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create transactor: %w", err)
		}
	}

	store, err := NewEthereumStore(client, common.HexToAddress(contractAddress), auth, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	store.closer = client.Close
	return store, nil
}

func (s *EthereumStore) IsAvailable(ctx context.Context) (bool, error) {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{Context: ctx}, &out, "isAvailable"); err != nil {
		s.logger.Warn("isAvailable call failed", zap.String("contract", s.address.Hex()), zap.Error(err))
		return false, nil
	}
	if len(out) != 1 {
		return false, fmt.Errorf("isAvailable: unexpected output length %d", len(out))
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

func (s *EthereumStore) Address() string {
	return s.address.Hex()
}

func (s *EthereumStore) GetData(ctx context.Context, key string) ([]byte, error) {
	var out []interface{}
	if err := s.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getData", key); err != nil {
		return nil, fmt.Errorf("getData %s: %w", key, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("getData %s: unexpected output length %d", key, len(out))
	}
	data := *abi.ConvertType(out[0], new([]byte)).(*[]byte)
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// SetData submits a setData transaction and waits until it is mined.
func (s *EthereumStore) SetData(ctx context.Context, key string, value []byte) error {
	if s.auth == nil {
		return ErrReadOnly
	}

	opts := *s.auth
	opts.Context = ctx
	tx, err := s.contract.Transact(&opts, "setData", key, value)
	if err != nil {
		return fmt.Errorf("setData %s: %w", key, err)
	}
	s.logger.Debug("setData submitted", zap.String("key", key), zap.String("tx", tx.Hash().Hex()))

	receipt, err := bind.WaitMined(ctx, s.backend, tx)
	if err != nil {
		return fmt.Errorf("setData %s: waiting for %s: %w", key, tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: setData %s in tx %s", ErrTransactionFailed, key, tx.Hash().Hex())
	}
	return nil
}

func (s *EthereumStore) Close() error {
	if s.closer != nil {
		s.closer()
	}
	return nil
}
