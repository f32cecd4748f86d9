package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ballotbox/contexts/poll-operations/poll-service/domain/entities"
	domainerrors "ballotbox/contexts/poll-operations/poll-service/domain/errors"
	"ballotbox/contexts/poll-operations/poll-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CreatePoll inserts the poll row and its option rows in one transaction. A
// duplicate poll id surfaces as ErrConflict so the caller can retry with a
// fresh code.
func (r *Repository) CreatePoll(ctx context.Context, poll entities.Poll) error {
	row := pollModelFromEntity(poll)
	options := optionModelsFromEntity(poll)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if len(options) > 0 {
			if err := tx.Create(&options).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("poll_repo_create_poll_failed", err,
			"poll_id", row.ID,
			"creator_id", row.CreatedBy,
		)
	}
	return nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(pollID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		return entities.Poll{}, r.logError("poll_repo_get_poll_failed", err, "poll_id", strings.TrimSpace(pollID))
	}
	options, err := r.loadOptions(ctx, []string{row.ID})
	if err != nil {
		return entities.Poll{}, err
	}
	return row.toEntity(options[row.ID]), nil
}

func (r *Repository) ListPolls(ctx context.Context) ([]entities.Poll, error) {
	var rows []pollModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("poll_repo_list_polls_failed", err)
	}
	return r.toPollEntities(ctx, rows)
}

func (r *Repository) UpdatePollFlags(
	ctx context.Context,
	pollID string,
	isActive bool,
	resultsPublished bool,
	updatedAt time.Time,
) (entities.Poll, error) {
	result := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("id = ?", strings.TrimSpace(pollID)).
		Updates(map[string]any{
			"is_active":         isActive,
			"results_published": resultsPublished,
			"updated_at":        updatedAt.UTC(),
		})
	if result.Error != nil {
		return entities.Poll{}, r.logError("poll_repo_update_poll_flags_failed", result.Error,
			"poll_id", strings.TrimSpace(pollID),
		)
	}
	if result.RowsAffected == 0 {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return r.GetPoll(ctx, pollID)
}

// DeletePollCascade removes the poll, its options and its votes in one
// transaction so no reader sees a half-deleted poll.
func (r *Repository) DeletePollCascade(ctx context.Context, pollID string) error {
	key := strings.TrimSpace(pollID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", key).Delete(&voteModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", key).Delete(&pollOptionModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", key).Delete(&pollModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrPollNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrPollNotFound) {
			return err
		}
		return r.logError("poll_repo_delete_poll_cascade_failed", err, "poll_id", key)
	}
	return nil
}

func (r *Repository) ListPollsVotedByUser(ctx context.Context, userID string) ([]entities.Poll, error) {
	var rows []pollModel
	err := r.db.WithContext(ctx).
		Table("polls AS p").
		Select("DISTINCT p.*").
		Joins("JOIN votes AS v ON v.poll_id = p.id").
		Where("v.user_id = ?", strings.TrimSpace(userID)).
		Order("p.created_at ASC").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("poll_repo_list_polls_voted_by_user_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return r.toPollEntities(ctx, rows)
}

func (r *Repository) CountPolls(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&pollModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("poll_repo_count_polls_failed", err)
	}
	return count, nil
}

func (r *Repository) CountPublishedPolls(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("results_published = ?", true).
		Count(&count).Error; err != nil {
		return 0, r.logError("poll_repo_count_published_polls_failed", err)
	}
	return count, nil
}

// CreateVote is insert-only; the unique index on (poll_id, user_id) closes the
// race between two concurrent submissions for the same voter.
func (r *Repository) CreateVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("poll_repo_create_vote_failed", err,
			"vote_id", row.ID,
			"poll_id", row.PollID,
			"user_id", row.UserID,
		)
	}
	return nil
}

func (r *Repository) GetVoteByVoter(ctx context.Context, pollID string, userID string) (entities.Vote, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("poll_repo_get_vote_by_voter_failed", err,
			"poll_id", strings.TrimSpace(pollID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListVotesByPoll(ctx context.Context, pollID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("poll_repo_list_votes_by_poll_failed", err,
			"poll_id", strings.TrimSpace(pollID),
		)
	}
	return toVoteEntities(rows), nil
}

func (r *Repository) ListVotesByUser(ctx context.Context, userID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("poll_repo_list_votes_by_user_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return toVoteEntities(rows), nil
}

func (r *Repository) ListVotes(ctx context.Context) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("poll_repo_list_votes_failed", err)
	}
	return toVoteEntities(rows), nil
}

func (r *Repository) CountVotes(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&voteModel{}).Count(&count).Error; err != nil {
		return 0, r.logError("poll_repo_count_votes_failed", err)
	}
	return count, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("poll_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("poll_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("poll_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("poll_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("poll_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) loadOptions(ctx context.Context, pollIDs []string) (map[string][]pollOptionModel, error) {
	grouped := make(map[string][]pollOptionModel, len(pollIDs))
	if len(pollIDs) == 0 {
		return grouped, nil
	}
	var rows []pollOptionModel
	if err := r.db.WithContext(ctx).
		Where("poll_id IN ?", pollIDs).
		Order("poll_id ASC, position ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("poll_repo_load_options_failed", err, "poll_count", len(pollIDs))
	}
	for _, row := range rows {
		grouped[row.PollID] = append(grouped[row.PollID], row)
	}
	return grouped, nil
}

func (r *Repository) toPollEntities(ctx context.Context, rows []pollModel) ([]entities.Poll, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	options, err := r.loadOptions(ctx, ids)
	if err != nil {
		return nil, err
	}
	items := make([]entities.Poll, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity(options[row.ID]))
	}
	return items, nil
}

// logError records the failure and wraps it in ErrStoreUnavailable so the
// transport edge can distinguish infrastructure faults from domain rejections.
func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "poll-operations/poll-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("poll repository operation failed", fields...)
	return fmt.Errorf("%w: %v", domainerrors.ErrStoreUnavailable, err)
}

type pollModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	Title             string    `gorm:"column:title"`
	Description       string    `gorm:"column:description"`
	CreatedBy         string    `gorm:"column:created_by"`
	CreatedByUsername string    `gorm:"column:created_by_username"`
	IsActive          bool      `gorm:"column:is_active"`
	ResultsPublished  bool      `gorm:"column:results_published"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (pollModel) TableName() string {
	return "polls"
}

func pollModelFromEntity(poll entities.Poll) pollModel {
	row := pollModel{
		ID:                strings.TrimSpace(poll.PollID),
		Title:             strings.TrimSpace(poll.Title),
		Description:       strings.TrimSpace(poll.Description),
		CreatedBy:         strings.TrimSpace(poll.CreatedBy),
		CreatedByUsername: strings.TrimSpace(poll.CreatedByUsername),
		IsActive:          poll.IsActive,
		ResultsPublished:  poll.ResultsPublished,
		CreatedAt:         poll.CreatedAt.UTC(),
		UpdatedAt:         poll.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m pollModel) toEntity(optionRows []pollOptionModel) entities.Poll {
	options := make([]entities.Option, 0, len(optionRows))
	for _, row := range optionRows {
		options = append(options, entities.Option{
			OptionID: row.OptionID,
			Text:     row.Text,
		})
	}
	return entities.Poll{
		PollID:            m.ID,
		Title:             m.Title,
		Description:       m.Description,
		Options:           options,
		CreatedBy:         m.CreatedBy,
		CreatedByUsername: m.CreatedByUsername,
		IsActive:          m.IsActive,
		ResultsPublished:  m.ResultsPublished,
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

type pollOptionModel struct {
	OptionID string `gorm:"column:option_id;primaryKey"`
	PollID   string `gorm:"column:poll_id"`
	Text     string `gorm:"column:text"`
	Position int    `gorm:"column:position"`
}

func (pollOptionModel) TableName() string {
	return "poll_options"
}

func optionModelsFromEntity(poll entities.Poll) []pollOptionModel {
	rows := make([]pollOptionModel, 0, len(poll.Options))
	for position, option := range poll.Options {
		rows = append(rows, pollOptionModel{
			OptionID: strings.TrimSpace(option.OptionID),
			PollID:   strings.TrimSpace(poll.PollID),
			Text:     strings.TrimSpace(option.Text),
			Position: position,
		})
	}
	return rows
}

type voteModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	PollID     string    `gorm:"column:poll_id;uniqueIndex:idx_votes_poll_user"`
	UserID     string    `gorm:"column:user_id;uniqueIndex:idx_votes_poll_user"`
	OptionID   string    `gorm:"column:option_id"`
	Username   string    `gorm:"column:username"`
	OptionText string    `gorm:"column:option_text"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	row := voteModel{
		ID:         strings.TrimSpace(vote.VoteID),
		PollID:     strings.TrimSpace(vote.PollID),
		UserID:     strings.TrimSpace(vote.UserID),
		OptionID:   strings.TrimSpace(vote.OptionID),
		Username:   strings.TrimSpace(vote.Username),
		OptionText: strings.TrimSpace(vote.OptionText),
		CreatedAt:  vote.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:     m.ID,
		PollID:     m.PollID,
		UserID:     m.UserID,
		OptionID:   m.OptionID,
		Username:   m.Username,
		OptionText: m.OptionText,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "poll_outbox"
}

func toVoteEntities(rows []voteModel) []entities.Vote {
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.PollRepository = (*Repository)(nil)
var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
