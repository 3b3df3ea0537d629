package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/domain/repository"
	"github.com/oksasatya/communet/internal/domain/values"
)

type ChannelRepository struct {
	q Querier
}

func NewChannelRepository(q Querier) *ChannelRepository {
	return &ChannelRepository{q: q}
}

func (r *ChannelRepository) Create(ctx context.Context, author *entity.Profile, ch *entity.Channel) error {
	row := r.q.QueryRow(ctx, `
		INSERT INTO channels (oid, name, description, avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, ch.OID, ch.Name.String(), ch.Description, ch.Avatar)
	if err := row.Scan(&ch.CreatedAt, &ch.UpdatedAt); err != nil {
		return mapErr(err)
	}
	if author == nil {
		return nil
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO channel_members (oid, channel_id, profile_id, is_connected)
		VALUES ($1, $2, $3, TRUE)
	`, uuid.NewString(), ch.OID, author.OID)
	return mapErr(err)
}

const channelColumns = `c.oid, c.name, c.description, c.avatar, c.is_deleted, c.created_at, c.updated_at`

func scanChannel(row scanner) (*entity.Channel, error) {
	var (
		ch   entity.Channel
		name string
	)
	err := row.Scan(&ch.OID, &name, &ch.Description, &ch.Avatar, &ch.IsDeleted, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	n, err := values.NewChannelName(name)
	if err != nil {
		return nil, fmt.Errorf("channel %s: %w", ch.OID, err)
	}
	ch.Name = n
	return &ch, nil
}

func (r *ChannelRepository) List(ctx context.Context, filters repository.ChannelFilters, profileID string) ([]*entity.Channel, int, error) {
	filters = filters.Normalize()

	const where = `
		FROM channels c
		JOIN channel_members m ON m.channel_id = c.oid
		WHERE m.profile_id = $1 AND m.is_connected AND NOT c.is_deleted
	`
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) `+where, profileID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.q.Query(ctx, `SELECT `+channelColumns+where+`
		ORDER BY c.created_at, c.oid
		LIMIT $2 OFFSET $3
	`, profileID, filters.Limit, filters.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	channels := make([]*entity.Channel, 0, filters.Limit)
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, 0, err
		}
		channels = append(channels, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.loadMembers(ctx, channels); err != nil {
		return nil, 0, err
	}
	return channels, total, nil
}

func (r *ChannelRepository) GetByID(ctx context.Context, channelID, profileID string, checkMember bool) (*entity.Channel, error) {
	var row pgx.Row
	if checkMember {
		row = r.q.QueryRow(ctx, `
			SELECT `+channelColumns+`
			FROM channels c
			JOIN channel_members m ON m.channel_id = c.oid AND m.profile_id = $2
			WHERE c.oid = $1 AND NOT c.is_deleted
		`, channelID, profileID)
	} else {
		row = r.q.QueryRow(ctx, `
			SELECT `+channelColumns+`
			FROM channels c
			WHERE c.oid = $1 AND NOT c.is_deleted
		`, channelID)
	}
	ch, err := scanChannel(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadMembers(ctx, []*entity.Channel{ch}); err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *ChannelRepository) Update(ctx context.Context, ch *entity.Channel) error {
	err := r.q.QueryRow(ctx, `
		UPDATE channels
		SET name = $2, description = $3, avatar = $4, updated_at = now()
		WHERE oid = $1 AND NOT is_deleted
		RETURNING updated_at
	`, ch.OID, ch.Name.String(), ch.Description, ch.Avatar).Scan(&ch.UpdatedAt)
	return mapErr(err)
}

func (r *ChannelRepository) SetAvatar(ctx context.Context, channelID, avatar string) error {
	res, err := r.q.Exec(ctx, `
		UPDATE channels
		SET avatar = $2, updated_at = now()
		WHERE oid = $1 AND NOT is_deleted
	`, channelID, avatar)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ChannelRepository) Delete(ctx context.Context, channelID string) error {
	res, err := r.q.Exec(ctx, `
		UPDATE channels
		SET is_deleted = TRUE, updated_at = now()
		WHERE oid = $1 AND NOT is_deleted
	`, channelID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

const memberSelect = `
	SELECT m.channel_id,
	       p.oid, p.display_name, p.avatar, p.created_at,
	       c.oid, c.username, c.email, c.password, c.created_at
	FROM channel_members m
	JOIN profiles p ON p.oid = m.profile_id
	JOIN credentials c ON c.oid = p.credentials_id
`

func (r *ChannelRepository) Members(ctx context.Context, channelID string) ([]*entity.Profile, error) {
	byChannel, err := r.members(ctx, []string{channelID})
	if err != nil {
		return nil, err
	}
	members := byChannel[channelID]
	if members == nil {
		members = []*entity.Profile{}
	}
	return members, nil
}

func (r *ChannelRepository) loadMembers(ctx context.Context, channels []*entity.Channel) error {
	if len(channels) == 0 {
		return nil
	}
	ids := make([]string, 0, len(channels))
	for _, ch := range channels {
		ids = append(ids, ch.OID)
	}
	byChannel, err := r.members(ctx, ids)
	if err != nil {
		return err
	}
	for _, ch := range channels {
		ch.Members = byChannel[ch.OID]
		if ch.Members == nil {
			ch.Members = []*entity.Profile{}
		}
	}
	return nil
}

func (r *ChannelRepository) members(ctx context.Context, channelIDs []string) (map[string][]*entity.Profile, error) {
	rows, err := r.q.Query(ctx, memberSelect+`
		WHERE m.channel_id = ANY($1::uuid[]) AND m.is_connected
		ORDER BY m.created_at, m.oid
	`, channelIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]*entity.Profile, len(channelIDs))
	for rows.Next() {
		var channelID string
		p, err := scanProfile(prefixScanner{row: rows, prefix: &channelID})
		if err != nil {
			return nil, err
		}
		out[channelID] = append(out[channelID], p)
	}
	return out, rows.Err()
}

// prefixScanner lets scanProfile read rows that carry one extra leading
// column.
type prefixScanner struct {
	row    scanner
	prefix any
}

func (s prefixScanner) Scan(dest ...any) error {
	return s.row.Scan(append([]any{s.prefix}, dest...)...)
}

// Connect inserts a connected membership or revives a disconnected one in a
// single statement. No returned row means the profile is already connected.
func (r *ChannelRepository) Connect(ctx context.Context, channelID, profileID string) (bool, error) {
	var oid string
	err := r.q.QueryRow(ctx, `
		INSERT INTO channel_members (oid, channel_id, profile_id, is_connected)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (channel_id, profile_id) DO UPDATE
		SET is_connected = TRUE, updated_at = now()
		WHERE channel_members.is_connected = FALSE
		RETURNING oid
	`, uuid.NewString(), channelID, profileID).Scan(&oid)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, mapErr(err)
	}
	return true, nil
}

func (r *ChannelRepository) Disconnect(ctx context.Context, channelID, profileID string) (bool, error) {
	res, err := r.q.Exec(ctx, `
		UPDATE channel_members
		SET is_connected = FALSE, updated_at = now()
		WHERE channel_id = $1 AND profile_id = $2 AND is_connected
	`, channelID, profileID)
	if err != nil {
		return false, err
	}
	return res.RowsAffected() == 1, nil
}

var _ repository.ChannelRepository = (*ChannelRepository)(nil)
