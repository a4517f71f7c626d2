package gemdrop

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Connection is the slice of the Solana JSON-RPC API the panel consumes.
type Connection interface {
	RequestAirdrop(ctx context.Context, to solana.PublicKey, lamports uint64) (solana.Signature, error)
	GetLatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType) error
	Balance(ctx context.Context, pubkey solana.PublicKey) (uint64, error)
}

type RPCConnection struct {
	client  *rpc.Client
	timeout time.Duration
	poll    time.Duration
}

func NewConnection(endpoint string, confirmTimeout time.Duration) *RPCConnection {
	if confirmTimeout <= 0 {
		confirmTimeout = 30 * time.Second
	}
	return &RPCConnection{
		client:  rpc.New(endpoint),
		timeout: confirmTimeout,
		poll:    200 * time.Millisecond,
	}
}

func (c *RPCConnection) RequestAirdrop(ctx context.Context, to solana.PublicKey, lamports uint64) (solana.Signature, error) {
	sig, err := c.client.RequestAirdrop(ctx, to, lamports, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("airdrop: %w", err)
	}
	return sig, nil
}

func (c *RPCConnection) GetLatestBlockhash(ctx context.Context) (solana.Hash, error) {
	recent, err := c.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("blockhash: %w", err)
	}
	return recent.Value.Blockhash, nil
}

func (c *RPCConnection) SendRawTransaction(ctx context.Context, raw []byte) (solana.Signature, error) {
	sig, err := c.client.SendRawTransaction(ctx, raw)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send: %w", err)
	}
	return sig, nil
}

// ConfirmTransaction polls signature status until commitment is reached.
func (c *RPCConnection) ConfirmTransaction(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		status, err := c.client.GetSignatureStatuses(ctx, false, sig)
		if err == nil && len(status.Value) > 0 && status.Value[0] != nil {
			st := status.Value[0]
			if st.Err != nil {
				return fmt.Errorf("confirm: transaction failed: %v", st.Err)
			}
			if Reached(st.ConfirmationStatus, commitment) {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirm: timeout waiting for %s: %w", commitment, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *RPCConnection) Balance(ctx context.Context, pubkey solana.PublicKey) (uint64, error) {
	result, err := c.client.GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return result.Value, nil
}

// Reached reports whether a signature status satisfies the wanted commitment.
func Reached(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	rank := map[rpc.ConfirmationStatusType]int{
		rpc.ConfirmationStatusProcessed: 1,
		rpc.ConfirmationStatusConfirmed: 2,
		rpc.ConfirmationStatusFinalized: 3,
	}
	need := 2
	switch want {
	case rpc.CommitmentProcessed:
		need = 1
	case rpc.CommitmentFinalized:
		need = 3
	}
	return rank[status] >= need
}
