package service

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/richardliu001/payments-engine/internal/engine"
	"github.com/richardliu001/payments-engine/internal/model"
	"github.com/richardliu001/payments-engine/internal/repo"
)

// SettlementService glues the settlement engine and the repository.
type SettlementService struct {
	repo repo.RepositoryInterface
	log  *zap.SugaredLogger
}

// NewSettlementService returns SettlementService.
func NewSettlementService(r repo.RepositoryInterface, logger *zap.SugaredLogger) *SettlementService {
	return &SettlementService{repo: r, log: logger}
}

// SettleResult is what a successful batch run produces.
type SettleResult struct {
	BatchID  uint64
	Accounts []*engine.Account
}

// Settle validates and applies the batch, then persists the batch row,
// its account snapshots and outbox events in one db transaction. A
// validation failure stores a REJECTED batch row carrying the diagnostic
// and returns the error; no snapshots are written for it.
func (s *SettlementService) Settle(ctx context.Context, records []engine.Record) (*SettleResult, error) {
	eng := engine.New(engine.NewLedger(), engine.NewAccountStore(), s.log)

	if err := eng.Run(records); err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			diag := verr.Error()
			b := &model.SettlementBatch{
				Status:      model.BatchRejected,
				RecordCount: len(records),
				Diagnostic:  &diag,
			}
			if dberr := s.repo.CreateBatch(ctx, s.repo.DB(ctx), b); dberr != nil {
				s.log.Errorw("store rejected batch", "err", dberr)
			}
		}
		return nil, err
	}

	accounts := eng.Accounts()
	var batchID uint64
	err := s.repo.DB(ctx).Transaction(func(tx *gorm.DB) error {
		b := &model.SettlementBatch{
			Status:      model.BatchSettled,
			RecordCount: len(records),
		}
		if err := s.repo.CreateBatch(ctx, tx, b); err != nil {
			return err
		}
		batchID = b.ID

		snaps := make([]model.AccountSnapshot, 0, len(accounts))
		for _, a := range accounts {
			snaps = append(snaps, model.AccountSnapshot{
				BatchID:   b.ID,
				ClientID:  a.ClientID,
				Available: a.Available,
				Held:      a.Held,
				Total:     a.Total(),
				Locked:    a.Locked,
			})
		}
		if err := s.repo.CreateSnapshots(ctx, tx, snaps); err != nil {
			return err
		}

		payload, _ := json.Marshal(map[string]interface{}{"batch_id": b.ID, "accounts": len(accounts)})
		evt := &model.OutboxEvent{
			Aggregate: "Batch", AggregateID: b.ID, EventType: "BatchSettled", Payload: string(payload),
		}
		if err := s.repo.CreateOutboxEvent(ctx, tx, evt); err != nil {
			return err
		}
		for _, a := range accounts {
			if !a.Locked {
				continue
			}
			payload, _ := json.Marshal(map[string]interface{}{"client_id": a.ClientID, "batch_id": b.ID})
			evt := &model.OutboxEvent{
				Aggregate: "Account", AggregateID: uint64(a.ClientID), EventType: "AccountLocked", Payload: string(payload),
			}
			if err := s.repo.CreateOutboxEvent(ctx, tx, evt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, a := range accounts {
		if err := s.repo.CacheBalance(ctx, a.ClientID, a.Available, a.Held, a.Locked); err != nil {
			s.log.Warn(err)
		}
	}
	return &SettleResult{BatchID: batchID, Accounts: accounts}, nil
}

// GetAccount returns the latest persisted balances for a client,
// preferring the cache.
func (s *SettlementService) GetAccount(ctx context.Context, clientID uint16) (*model.AccountSnapshot, error) {
	avail, held, locked, err := s.repo.GetCachedBalance(ctx, clientID)
	if err == nil {
		return &model.AccountSnapshot{
			ClientID:  clientID,
			Available: avail,
			Held:      held,
			Total:     avail.Add(held),
			Locked:    locked,
		}, nil
	}
	snap, err := s.repo.LatestSnapshot(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if cerr := s.repo.CacheBalance(ctx, clientID, snap.Available, snap.Held, snap.Locked); cerr != nil {
		s.log.Warn(cerr)
	}
	return snap, nil
}

// GetBatch returns the stored batch row.
func (s *SettlementService) GetBatch(ctx context.Context, id uint64) (*model.SettlementBatch, error) {
	return s.repo.GetBatch(ctx, id)
}

// Repo exposes underlying repository (unit tests helper).
func (s *SettlementService) Repo() repo.RepositoryInterface {
	return s.repo
}
