// Package manager implements the submission state machine that drives one
// transaction from nonce acquisition through broadcast, fee-bump
// resubmission, and confirmation. It is restartable from a persisted
// record after a crash: every state transition is durable before the
// in-memory loop advances past it, so a process that dies mid-submission
// resumes exactly where the record left off rather than re-broadcasting
// or losing track of an in-flight transaction.
package manager

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/sisu-network/lib/log"

	"github.com/cartesi/tx-manager/internal/chain"
	"github.com/cartesi/tx-manager/internal/classifier"
	"github.com/cartesi/tx-manager/internal/confirm"
	"github.com/cartesi/tx-manager/internal/ethadapter"
	"github.com/cartesi/tx-manager/internal/feepolicy"
	"github.com/cartesi/tx-manager/internal/oracle"
	"github.com/cartesi/tx-manager/internal/store"
)

type correlationIDKey struct{}

// withCorrelationID attaches id to ctx so every log line emitted while
// driving one Submit or recovery call can be grepped together.
func withCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// correlationIDFrom returns the id attached by withCorrelationID, or "-"
// if ctx carries none (e.g. a direct unit-test call into run/tick).
func correlationIDFrom(ctx context.Context) string {
	id, ok := ctx.Value(correlationIDKey{}).(string)
	if !ok {
		return "-"
	}
	return id
}

// defaultPriorityTip is the priority fee used for an EIP-1559 fallback
// quote when the oracle fails; it is added to the chain's latest base fee
// to form the max fee. 1.5 gwei, a conservative default tip that clears
// most validators' inclusion threshold without overpaying.
var defaultPriorityTip = big.NewInt(1_500_000_000)

// Manager drives exactly one in-flight transaction per sender. A Manager
// instance is consumed by Submit: callers must not call Submit twice
// concurrently on the same instance, and must not run two Manager
// instances over the same sender concurrently (enforced by the caller;
// Store does no locking).
type Manager struct {
	chainAdapter ethadapter.Chain
	oracle       oracle.Oracle
	store        store.Store
	classifier   classifier.Classifier
	waiter       *confirm.Waiter

	desc   chain.Descriptor
	sender common.Address
	config Config

	// bumpFactorPct is the live minimum bump factor, raised whenever a
	// node rejects a resubmission as underpriced and reset once a
	// resubmission clears it.
	bumpFactorPct int64
}

// New constructs a Manager over sender and recovers any record persisted
// for it: if one exists, it is driven to completion (or to a terminal
// failure) before New returns. A non-nil receipt signals that recovery
// found and confirmed a previously broadcast transaction.
func New(ctx context.Context, cfg Config, chainAdapter ethadapter.Chain, orc oracle.Oracle, st store.Store, cls classifier.Classifier, desc chain.Descriptor, sender common.Address) (*Manager, *types.Receipt, error) {
	if cls == nil {
		cls = classifier.Default{}
	}

	m := &Manager{
		chainAdapter:  chainAdapter,
		oracle:        orc,
		store:         st,
		classifier:    cls,
		waiter:        confirm.NewWaiter(chainAdapter, cfg.blockTime()),
		desc:          desc,
		sender:        sender,
		config:        cfg,
		bumpFactorPct: resolvedBumpFactor(cfg.MinBumpFactorPct),
	}

	record, err := st.Load(ctx, sender)
	if err != nil {
		return nil, nil, newError(KindPersistence, err)
	}
	if record == nil {
		return m, nil, nil
	}

	ctx = withCorrelationID(ctx, uuid.NewString())
	log.Infof("manager[%s]: recovering in-flight submission for %s (nonce %d, %d attempts)", correlationIDFrom(ctx), sender.Hex(), record.Nonce, len(record.Attempts))
	receipt, err := m.run(ctx, record)
	if err != nil {
		return m, nil, err
	}
	return m, receipt, nil
}

// NewWithClear is New, but first discards any persisted record for
// sender. Use it when the caller has independently determined the prior
// in-flight transaction (if any) should be abandoned rather than
// recovered.
func NewWithClear(ctx context.Context, cfg Config, chainAdapter ethadapter.Chain, orc oracle.Oracle, st store.Store, cls classifier.Classifier, desc chain.Descriptor, sender common.Address) (*Manager, error) {
	if err := st.Clear(ctx, sender); err != nil {
		return nil, newError(KindPersistence, err)
	}
	m, _, err := New(ctx, cfg, chainAdapter, orc, st, cls, desc, sender)
	return m, err
}

func resolvedBumpFactor(configured int64) int64 {
	if configured > 0 {
		return configured
	}
	return feepolicy.DefaultMinBumpFactor
}

// Submit broadcasts req under a freshly acquired nonce, resubmits it as
// needed under the fee policy, and returns once it is mined and buried
// under confirmations blocks, or a terminal error.
func (m *Manager) Submit(ctx context.Context, req chain.Request, confirmations uint64, priority chain.Priority) (*types.Receipt, error) {
	correlationID := uuid.NewString()
	ctx = withCorrelationID(ctx, correlationID)
	log.Infof("manager[%s]: submitting for %s, priority %s, confirmations %d", correlationID, req.From.Hex(), priority, confirmations)

	record, err := m.firstAttempt(ctx, req, confirmations, priority)
	if err != nil {
		return nil, err
	}
	return m.run(ctx, record)
}

// firstAttempt acquires a nonce, quotes fees, estimates gas, broadcasts,
// and persists the record as the transaction's first attempt. A
// NonceTooLow response to Send means the account advanced independently
// between the nonce query and the broadcast; it refreshes the nonce and
// retries without persisting the aborted attempt. A transient failure
// from any collaborator (pending nonce, fee quote, gas estimate,
// broadcast) is retried, sleeping PollInterval between attempts, up to
// config.providerRetryBudget() times before giving up as
// KindProviderUnavailable.
func (m *Manager) firstAttempt(ctx context.Context, req chain.Request, confirmations uint64, priority chain.Priority) (*chain.Record, error) {
	transientFailures := 0

	for {
		nonce, err := m.chainAdapter.PendingNonce(ctx, req.From)
		if err != nil {
			if rerr := m.retryTransient(ctx, &transientFailures, fmt.Errorf("pending nonce: %w", err)); rerr != nil {
				return nil, rerr
			}
			continue
		}

		fees, err := m.quoteWithFallback(ctx, priority)
		if err != nil {
			if rerr := m.retryTransient(ctx, &transientFailures, err); rerr != nil {
				return nil, rerr
			}
			continue
		}

		gasLimit, err := m.chainAdapter.EstimateGas(ctx, req, fees)
		if err != nil {
			if m.classifier.Classify(err) == classifier.ExecutionRevert {
				return nil, newError(KindExecutionRevert, err)
			}
			if rerr := m.retryTransient(ctx, &transientFailures, fmt.Errorf("estimate gas: %w", err)); rerr != nil {
				return nil, rerr
			}
			continue
		}

		hash, err := m.chainAdapter.Send(ctx, req, nonce, fees, gasLimit, m.desc)
		if err != nil {
			switch m.classifier.Classify(err) {
			case classifier.NonceTooLow:
				log.Infof("manager[%s]: nonce %d for %s taken by another transaction before broadcast, refreshing", correlationIDFrom(ctx), nonce, req.From.Hex())
				continue
			case classifier.InsufficientFunds:
				return nil, newError(KindInsufficientFunds, err)
			default:
				if rerr := m.retryTransient(ctx, &transientFailures, fmt.Errorf("send: %w", err)); rerr != nil {
					return nil, rerr
				}
				continue
			}
		}

		record := &chain.Record{
			Request:        req,
			Confirmations:  confirmations,
			Priority:       priority,
			Nonce:          nonce,
			GasLimit:       gasLimit,
			FirstAttemptAt: time.Now(),
			Attempts:       []chain.Attempt{{TxHash: hash, Fees: fees}},
		}
		if err := m.store.Save(ctx, req.From, record); err != nil {
			return nil, newError(KindPersistence, err)
		}
		return record, nil
	}
}

// retryTransient counts one more transient provider failure against the
// configured retry budget. It returns nil (meaning: sleep and retry) while
// budget remains, or a terminal KindProviderUnavailable *Error once it's
// exhausted. It also surfaces KindCancelled if ctx is cancelled during
// the sleep, so a caller cancellation during backoff never gets masked by
// a confusing provider-unavailable error.
func (m *Manager) retryTransient(ctx context.Context, failures *int, err error) error {
	*failures++
	budget := m.config.providerRetryBudget()
	if *failures > budget {
		return newError(KindProviderUnavailable, fmt.Errorf("exhausted %d retries: %w", budget, err))
	}

	log.Errorf("manager[%s]: transient provider failure (%d/%d), retrying: %v", correlationIDFrom(ctx), *failures, budget, err)
	select {
	case <-ctx.Done():
		return newError(KindCancelled, ctx.Err())
	case <-time.After(m.config.pollInterval()):
		return nil
	}
}

// run drives record through the poll/resubmit loop and the confirmation
// wait until it is mined, buried under the required confirmations, or
// fails terminally.
func (m *Manager) run(ctx context.Context, record *chain.Record) (*types.Receipt, error) {
	for {
		hash, found, err := m.scanForReceipt(ctx, record)
		if err != nil {
			return nil, err
		}

		if found {
			result, err := m.waiter.Await(ctx, hash, record.Confirmations)
			if err != nil {
				if errors.Is(err, confirm.ErrReorged) {
					log.Infof("manager[%s]: mined attempt %s for %s reorged out, resuming the poll/resubmit loop", correlationIDFrom(ctx), hash.Hex(), record.Request.From.Hex())
					continue
				}
				if ctx.Err() != nil {
					return nil, newError(KindCancelled, err)
				}
				return nil, newError(KindProviderUnavailable, err)
			}

			if err := m.store.Clear(ctx, record.Request.From); err != nil {
				return nil, newError(KindPersistence, err)
			}
			if result.Receipt.Status == types.ReceiptStatusFailed {
				return nil, newError(KindExecutionRevert, fmt.Errorf("transaction %s failed in block %d", hash.Hex(), result.MinedBlock))
			}
			return result.Receipt, nil
		}

		if terminal, err := m.tick(ctx, record); err != nil {
			return nil, err
		} else if terminal != nil {
			return nil, terminal
		}

		if time.Since(record.FirstAttemptAt) > m.config.transactionMiningTimeout() {
			return nil, newError(KindMiningTimeout, nil)
		}

		select {
		case <-ctx.Done():
			return nil, newError(KindCancelled, ctx.Err())
		case <-time.After(m.config.pollInterval()):
		}
	}
}

// scanForReceipt checks every attempt, newest first, for a mined receipt.
func (m *Manager) scanForReceipt(ctx context.Context, record *chain.Record) (common.Hash, bool, error) {
	for i := len(record.Attempts) - 1; i >= 0; i-- {
		hash := record.Attempts[i].TxHash
		receipt, err := m.chainAdapter.GetReceipt(ctx, hash)
		if err != nil {
			log.Errorf("manager[%s]: get receipt for %s: %v", correlationIDFrom(ctx), hash.Hex(), err)
			continue
		}
		if receipt != nil {
			return hash, true, nil
		}
	}
	return common.Hash{}, false, nil
}

// tick runs one resubmission attempt. A non-nil *Error return is
// terminal; a nil, nil return (whether or not a new attempt was appended)
// means the caller should sleep and poll again.
func (m *Manager) tick(ctx context.Context, record *chain.Record) (*Error, error) {
	fresh, err := m.quoteWithFallback(ctx, record.Priority)
	if err != nil {
		log.Errorf("manager[%s]: quote fees for %s: %v", correlationIDFrom(ctx), record.Request.From.Hex(), err)
		return nil, nil
	}

	var baseFee *big.Int
	if !m.desc.IsLegacy {
		if head, err := m.chainAdapter.BlockNumber(ctx); err == nil {
			if bf, err := m.chainAdapter.BaseFee(ctx, head); err == nil {
				baseFee = bf
			}
		}
	}

	prev := record.Latest().Fees
	policy := feepolicy.Policy{MinBumpFactorPct: m.bumpFactorPct}
	candidate, decision := policy.Next(m.desc, baseFee, &prev, fresh)
	if decision == feepolicy.HoldPrevious {
		return nil, nil
	}

	hash, err := m.chainAdapter.Send(ctx, record.Request, record.Nonce, candidate, record.GasLimit, m.desc)
	if err != nil {
		switch m.classifier.Classify(err) {
		case classifier.ReplacementUnderpriced:
			m.bumpFactorPct += bumpFactorStepPct
			log.Infof("manager[%s]: replacement underpriced for %s, raising bump factor to %d%%", correlationIDFrom(ctx), record.Request.From.Hex(), m.bumpFactorPct)
			return nil, nil

		case classifier.AlreadyKnown:
			// The node already has this variant, most likely from an
			// earlier identical attempt; treat it as an idempotent
			// success rather than a new attempt.
			return nil, nil

		case classifier.NonceTooLow:
			if hash, found, err := m.scanForReceipt(ctx, record); err == nil && found {
				_ = hash
				return nil, nil
			}
			if err := m.store.Clear(ctx, record.Request.From); err != nil {
				return nil, newError(KindPersistence, err)
			}
			return newError(KindNonceOverwritten, nil), nil

		case classifier.InsufficientFunds:
			if err := m.store.Clear(ctx, record.Request.From); err != nil {
				return nil, newError(KindPersistence, err)
			}
			return newError(KindInsufficientFunds, err), nil

		case classifier.ExecutionRevert:
			if err := m.store.Clear(ctx, record.Request.From); err != nil {
				return nil, newError(KindPersistence, err)
			}
			return newError(KindExecutionRevert, err), nil

		default:
			log.Errorf("manager[%s]: resubmit for %s: %v", correlationIDFrom(ctx), record.Request.From.Hex(), err)
			return nil, nil
		}
	}

	record.Attempts = append(record.Attempts, chain.Attempt{TxHash: hash, Fees: candidate})
	m.bumpFactorPct = resolvedBumpFactor(m.config.MinBumpFactorPct)
	if err := m.store.Save(ctx, record.Request.From, record); err != nil {
		return nil, newError(KindPersistence, err)
	}
	log.Infof("manager[%s]: bumped %s to attempt %d (hash %s)", correlationIDFrom(ctx), record.Request.From.Hex(), len(record.Attempts), hash.Hex())
	return nil, nil
}

// quoteWithFallback asks the oracle for a fee quote, falling back to the
// chain adapter's own view (suggested gas price, or base fee plus a
// default tip) if the oracle fails.
func (m *Manager) quoteWithFallback(ctx context.Context, priority chain.Priority) (chain.Quote, error) {
	quote, err := m.oracle.Quote(ctx, priority, m.desc)
	if err == nil {
		return quote, nil
	}
	log.Errorf("manager[%s]: gas oracle failed, falling back to chain adapter: %v", correlationIDFrom(ctx), err)

	if m.desc.IsLegacy {
		gasPrice, gerr := m.chainAdapter.LegacyGasPrice(ctx)
		if gerr != nil {
			return chain.Quote{}, fmt.Errorf("oracle failed (%v) and fallback gas price failed: %w", err, gerr)
		}
		return chain.Quote{GasPrice: gasPrice}, nil
	}

	head, herr := m.chainAdapter.BlockNumber(ctx)
	if herr != nil {
		return chain.Quote{}, fmt.Errorf("oracle failed (%v) and fallback block number failed: %w", err, herr)
	}
	baseFee, berr := m.chainAdapter.BaseFee(ctx, head)
	if berr != nil {
		return chain.Quote{}, fmt.Errorf("oracle failed (%v) and fallback base fee failed: %w", err, berr)
	}
	maxFee := new(big.Int).Add(baseFee, defaultPriorityTip)
	return chain.Quote{MaxFee: maxFee, MaxPriorityFee: defaultPriorityTip}, nil
}
