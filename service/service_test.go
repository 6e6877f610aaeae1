package service

import (
	stded25519 "crypto/ed25519"
	"context"
	"testing"
	"time"

	"github.com/blockberries/hashvote/crypto"
	"github.com/blockberries/hashvote/engine"
	"github.com/blockberries/hashvote/events"
	"github.com/blockberries/hashvote/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestSigner(t *testing.T, book *crypto.KeyBook) *crypto.Ed25519Signer {
	t.Helper()
	pub, priv, err := stded25519.GenerateKey(nil)
	require.NoError(t, err)
	signer, err := crypto.NewEd25519Signer(priv)
	require.NoError(t, err)
	book.Register(signer.Address(), pub)
	return signer
}

func TestServiceReachesConsensusOnSufficientYesVotes(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	book := crypto.NewKeyBook()
	svc := New(Config{Verifier: book})
	ctx := context.Background()
	scope := types.ScopeID("proposal.topic")

	require.NoError(t, svc.Scope(scope).NetworkType(types.NetworkGossipsub).Threshold(2.0/3.0).TimeoutSeconds(60).Initialize(ctx))

	voters := []*crypto.Ed25519Signer{
		newTestSigner(t, book),
		newTestSigner(t, book),
		newTestSigner(t, book),
	}

	proposal, err := svc.CreateProposal(ctx, scope, types.ZeroAddress, CreateProposalRequest{
		Name:           "raise-the-fee",
		Payload:        []byte("payload"),
		ExpectedVoters: uint32(len(voters)),
	})
	require.NoError(t, err)

	sub := svc.Subscribe()
	defer sub.Close()

	// required = ceil(2/3*3) = 2, so the session decides on the second
	// vote; the third voter's registered key is exercised by the
	// rejection assertion below instead of a third accepted vote.
	for _, voter := range voters[:2] {
		_, err := svc.CastVote(ctx, scope, proposal.ProposalID, true, voter)
		require.NoError(t, err)
	}

	status, err := svc.GetConsensusResult(ctx, scope, proposal.ProposalID)
	require.NoError(t, err)
	require.Equal(t, types.StatusConsensusReached, status.Kind)
	require.True(t, status.Result)

	select {
	case env := <-sub.Events():
		reached, ok := env.Event.(events.ConsensusReached)
		require.True(t, ok)
		require.True(t, reached.Result)
	case <-time.After(time.Second):
		t.Fatal("expected a ConsensusReached event")
	}

	_, err = svc.CastVote(ctx, scope, proposal.ProposalID, true, voters[2])
	require.ErrorIs(t, err, engine.ErrSessionClosed)
}

func TestServiceRejectsDoubleVote(t *testing.T) {
	book := crypto.NewKeyBook()
	svc := New(Config{Verifier: book})
	ctx := context.Background()
	scope := types.ScopeID("proposal.topic")
	require.NoError(t, svc.Scope(scope).Initialize(ctx))

	voter := newTestSigner(t, book)
	proposal, err := svc.CreateProposal(ctx, scope, types.ZeroAddress, CreateProposalRequest{
		Name: "p", Payload: []byte("x"), ExpectedVoters: 3,
	})
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, scope, proposal.ProposalID, true, voter)
	require.NoError(t, err)

	_, err = svc.CastVote(ctx, scope, proposal.ProposalID, false, voter)
	require.Error(t, err)
}

func TestServiceProcessIncomingProposalConflict(t *testing.T) {
	book := crypto.NewKeyBook()
	svc := New(Config{Verifier: book})
	ctx := context.Background()
	scope := types.ScopeID("proposal.topic")
	require.NoError(t, svc.Scope(scope).Initialize(ctx))

	proposal, err := svc.CreateProposal(ctx, scope, types.ZeroAddress, CreateProposalRequest{
		Name: "p", Payload: []byte("x"), ExpectedVoters: 3,
	})
	require.NoError(t, err)

	conflicting := proposal.Clone()
	conflicting.Name = "different-name"
	conflicting.ProposalHash = types.ComputeProposalHash(conflicting)

	err = svc.ProcessIncomingProposal(ctx, scope, conflicting)
	require.ErrorIs(t, err, ErrProposalConflict)
}

func TestScopeEvictsOldestNonActiveSession(t *testing.T) {
	book := crypto.NewKeyBook()
	svc := New(Config{Verifier: book})
	ctx := context.Background()
	scope := types.ScopeID("proposal.topic")
	require.NoError(t, svc.Scope(scope).MaxSessions(1).TimeoutSeconds(1).Initialize(ctx))

	voter := newTestSigner(t, book)
	first, err := svc.CreateProposal(ctx, scope, types.ZeroAddress, CreateProposalRequest{
		Name: "first", Payload: []byte("x"), ExpectedVoters: 1,
	})
	require.NoError(t, err)
	_, err = svc.CastVote(ctx, scope, first.ProposalID, true, voter)
	require.NoError(t, err)

	status, err := svc.GetConsensusResult(ctx, scope, first.ProposalID)
	require.NoError(t, err)
	require.Equal(t, types.StatusConsensusReached, status.Kind)

	second, err := svc.CreateProposal(ctx, scope, types.ZeroAddress, CreateProposalRequest{
		Name: "second", Payload: []byte("y"), ExpectedVoters: 1,
	})
	require.NoError(t, err)

	_, err = svc.GetConsensusResult(ctx, scope, first.ProposalID)
	require.ErrorIs(t, err, ErrProposalNotFound)

	_, err = svc.GetConsensusResult(ctx, scope, second.ProposalID)
	require.NoError(t, err)
}
