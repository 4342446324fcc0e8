package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/richardliu001/payments-engine/internal/model"
)

// ErrBatchNotFound is returned when a batch id has no stored row.
var ErrBatchNotFound = errors.New("batch not found")

// RepositoryInterface restricts Repo methods for unit-test mocks.
type RepositoryInterface interface {
	DB(ctx context.Context) *gorm.DB
	CreateBatch(ctx context.Context, tx *gorm.DB, b *model.SettlementBatch) error
	GetBatch(ctx context.Context, id uint64) (*model.SettlementBatch, error)
	CreateSnapshots(ctx context.Context, tx *gorm.DB, snaps []model.AccountSnapshot) error
	LatestSnapshot(ctx context.Context, clientID uint16) (*model.AccountSnapshot, error)
	CreateOutboxEvent(ctx context.Context, tx *gorm.DB, evt *model.OutboxEvent) error
	PollOutbox(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkOutboxProcessed(ctx context.Context, id uint64) error
	PublishEvent(ctx context.Context, evt model.OutboxEvent) error
	CacheBalance(ctx context.Context, clientID uint16, available, held decimal.Decimal, locked bool) error
	GetCachedBalance(ctx context.Context, clientID uint16) (decimal.Decimal, decimal.Decimal, bool, error)
}

// Repository implements RepositoryInterface.
type Repository struct {
	db     *gorm.DB
	rdb    *redis.Client
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

// NewRepository constructs repo.
func NewRepository(db *gorm.DB, rdb *redis.Client, w *kafka.Writer, logger *zap.SugaredLogger) *Repository {
	return &Repository{db: db, rdb: rdb, writer: w, log: logger}
}

// DB returns underlying *gorm.DB
func (r *Repository) DB(ctx context.Context) *gorm.DB { return r.db.WithContext(ctx) }

// CreateBatch inserts the batch row.
func (r *Repository) CreateBatch(ctx context.Context, tx *gorm.DB, b *model.SettlementBatch) error {
	return tx.WithContext(ctx).Create(b).Error
}

// GetBatch fetches one batch by id.
func (r *Repository) GetBatch(ctx context.Context, id uint64) (*model.SettlementBatch, error) {
	var b model.SettlementBatch
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateSnapshots bulk-inserts the final account rows of a batch.
func (r *Repository) CreateSnapshots(ctx context.Context, tx *gorm.DB, snaps []model.AccountSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&snaps).Error
}

// LatestSnapshot returns the most recent snapshot for a client.
func (r *Repository) LatestSnapshot(ctx context.Context, clientID uint16) (*model.AccountSnapshot, error) {
	var s model.AccountSnapshot
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("id desc").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateOutboxEvent writes event.
func (r *Repository) CreateOutboxEvent(ctx context.Context, tx *gorm.DB, evt *model.OutboxEvent) error {
	return tx.WithContext(ctx).Create(evt).Error
}

// PollOutbox pulls unprocessed events.
func (r *Repository) PollOutbox(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	var evts []model.OutboxEvent
	err := r.db.WithContext(ctx).Where("processed=false").Order("created_at").Limit(limit).Find(&evts).Error
	return evts, err
}

// MarkOutboxProcessed sets processed flag.
func (r *Repository) MarkOutboxProcessed(ctx context.Context, id uint64) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.OutboxEvent{}).Where("id=?", id).
		Updates(map[string]interface{}{"processed": true, "processed_at": &now}).Error
}

// PublishEvent sends to Kafka.
func (r *Repository) PublishEvent(ctx context.Context, evt model.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", evt.ID)),
		Value: []byte(evt.Payload),
		Time:  time.Now(),
	}
	return r.writer.WriteMessages(ctx, msg)
}

// CacheBalance writes the latest available|held|locked triple to Redis.
func (r *Repository) CacheBalance(ctx context.Context, clientID uint16, available, held decimal.Decimal, locked bool) error {
	val := fmt.Sprintf("%s|%s|%t", available.String(), held.String(), locked)
	return r.rdb.Set(ctx, fmt.Sprintf("balance:%d", clientID), val, 5*time.Minute).Err()
}

// GetCachedBalance reads Redis.
func (r *Repository) GetCachedBalance(ctx context.Context, clientID uint16) (decimal.Decimal, decimal.Decimal, bool, error) {
	str, err := r.rdb.Get(ctx, fmt.Sprintf("balance:%d", clientID)).Result()
	if err != nil {
		return decimal.Zero, decimal.Zero, false, err
	}
	parts := strings.Split(str, "|")
	if len(parts) != 3 {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("malformed cached balance %q", str)
	}
	avail, err := decimal.NewFromString(parts[0])
	if err != nil {
		return decimal.Zero, decimal.Zero, false, err
	}
	held, err := decimal.NewFromString(parts[1])
	if err != nil {
		return decimal.Zero, decimal.Zero, false, err
	}
	locked, err := strconv.ParseBool(parts[2])
	if err != nil {
		return decimal.Zero, decimal.Zero, false, err
	}
	return avail, held, locked, nil
}
