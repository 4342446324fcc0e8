package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/richardliu001/payments-engine/internal/engine"
	"github.com/richardliu001/payments-engine/internal/logger"
	"github.com/richardliu001/payments-engine/internal/model"
	"github.com/richardliu001/payments-engine/internal/repo"
)

func rec(kind engine.Kind, client uint16, tx uint32, amount string) engine.Record {
	r := engine.Record{Kind: kind, ClientID: client, TxID: tx}
	if amount != "" {
		d := decimal.RequireFromString(amount)
		r.Amount = &d
	}
	return r
}

func newTestService(t *testing.T) (*SettlementService, context.Context) {
	// SQLite in-memory DB, one per test so runs stay isolated
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&model.SettlementBatch{}, &model.AccountSnapshot{}, &model.OutboxEvent{}))

	// Redis mock
	rdb, mock := redismock.NewClientMock()
	mock.ExpectSet("balance:1", "100|0|false", 5*time.Minute).SetVal("OK")
	mock.ExpectSet("balance:2", "0|0|true", 5*time.Minute).SetVal("OK")
	mock.ExpectGet("balance:1").SetVal("100|0|false")
	mock.ExpectGet("balance:2").RedisNil()
	mock.ExpectSet("balance:2", "0|0|true", 5*time.Minute).SetVal("OK")

	writer := &kafka.Writer{} // not used here
	log, _ := logger.NewLogger()
	repository := repo.NewRepository(db, rdb, writer, log)
	svc := NewSettlementService(repository, log)

	return svc, context.Background()
}

func TestSettlementService_FullFlow(t *testing.T) {
	svc, ctx := newTestService(t)

	res, err := svc.Settle(ctx, []engine.Record{
		rec(engine.KindDeposit, 1, 1, "100"),
		rec(engine.KindDeposit, 2, 2, "50"),
		rec(engine.KindDispute, 2, 2, ""),
		rec(engine.KindChargeback, 2, 2, ""),
	})
	assert.NoError(t, err)
	assert.Len(t, res.Accounts, 2)

	// batch row persisted
	b, err := svc.GetBatch(ctx, res.BatchID)
	assert.NoError(t, err)
	assert.Equal(t, model.BatchSettled, b.Status)
	assert.Equal(t, 4, b.RecordCount)

	// snapshots persisted per account
	var snaps []model.AccountSnapshot
	err = svc.Repo().DB(ctx).Where("batch_id = ?", res.BatchID).Order("client_id").Find(&snaps).Error
	assert.NoError(t, err)
	assert.Len(t, snaps, 2)
	assert.Equal(t, "100", snaps[0].Available.String())
	assert.False(t, snaps[0].Locked)
	assert.True(t, snaps[1].Locked)
	assert.Equal(t, "0", snaps[1].Total.String())

	// outbox: one BatchSettled plus one AccountLocked
	events, err := svc.Repo().PollOutbox(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	types := []string{events[0].EventType, events[1].EventType}
	assert.Contains(t, types, "BatchSettled")
	assert.Contains(t, types, "AccountLocked")

	// account read, cache hit
	snap, err := svc.GetAccount(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, "100", snap.Available.String())
	assert.False(t, snap.Locked)

	// account read, cache miss falls back to db
	snap2, err := svc.GetAccount(ctx, 2)
	assert.NoError(t, err)
	assert.True(t, snap2.Locked)
	assert.Equal(t, "0", snap2.Available.String())
}

func TestSettlementService_RejectedBatch(t *testing.T) {
	svc, ctx := newTestService(t)

	_, err := svc.Settle(ctx, []engine.Record{
		rec(engine.KindDeposit, 1, 100, "10"),
		rec(engine.KindDeposit, 2, 100, "10"),
	})
	assert.Error(t, err)
	var verr *engine.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.EqualError(t, err, "Transaction ids are not unique!")

	// rejected batch row carries the diagnostic, with no snapshots
	var batches []model.SettlementBatch
	assert.NoError(t, svc.Repo().DB(ctx).Find(&batches).Error)
	assert.Len(t, batches, 1)
	assert.Equal(t, model.BatchRejected, batches[0].Status)
	if assert.NotNil(t, batches[0].Diagnostic) {
		assert.Equal(t, "Transaction ids are not unique!", *batches[0].Diagnostic)
	}

	var count int64
	assert.NoError(t, svc.Repo().DB(ctx).Model(&model.AccountSnapshot{}).Count(&count).Error)
	assert.Zero(t, count)
}
