// Package apptest provides in-memory doubles for the application ports.
package apptest

import (
	"context"
	"sync"
	"time"

	"github.com/oksasatya/communet/internal/domain/entity"
	"github.com/oksasatya/communet/internal/domain/repository"
)

type membership struct {
	channelID string
	profileID string
	connected bool
}

type state struct {
	credentials map[string]entity.Credentials
	profiles    map[string]entity.Profile
	channels    map[string]entity.Channel
	order       []string
	members     []membership
}

func (s *state) clone() *state {
	c := &state{
		credentials: make(map[string]entity.Credentials, len(s.credentials)),
		profiles:    make(map[string]entity.Profile, len(s.profiles)),
		channels:    make(map[string]entity.Channel, len(s.channels)),
		order:       append([]string(nil), s.order...),
		members:     append([]membership(nil), s.members...),
	}
	for k, v := range s.credentials {
		c.credentials[k] = v
	}
	for k, v := range s.profiles {
		c.profiles[k] = v
	}
	for k, v := range s.channels {
		c.channels[k] = v
	}
	return c
}

// Store is an in-memory repository.Transactor. Each Do works on a copy of
// the data that replaces the original only when fn succeeds. Transactions
// are serialized.
type Store struct {
	mu    sync.Mutex
	state *state

	Commits   int
	Rollbacks int
}

func NewStore() *Store {
	return &Store{state: (&state{}).clone()}
}

func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, uow repository.UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	committed := false
	defer func() {
		if !committed {
			s.Rollbacks++
		}
	}()
	if err := fn(ctx, &uow{st: work}); err != nil {
		return err
	}
	s.state = work
	s.Commits++
	committed = true
	return nil
}

type uow struct{ st *state }

func (u *uow) Credentials() repository.CredentialsRepository { return credentialsRepo{u.st} }
func (u *uow) Profiles() repository.ProfileRepository        { return profilesRepo{u.st} }
func (u *uow) Channels() repository.ChannelRepository        { return channelsRepo{u.st} }

type credentialsRepo struct{ st *state }

func (r credentialsRepo) Create(_ context.Context, c *entity.Credentials) error {
	for _, existing := range r.st.credentials {
		if existing.Username == c.Username || existing.Email == c.Email {
			return repository.ErrConflict
		}
	}
	c.CreatedAt = time.Now().UTC()
	r.st.credentials[c.OID] = *c
	return nil
}

func (r credentialsRepo) Exists(_ context.Context, email, username string) (bool, error) {
	for _, c := range r.st.credentials {
		if c.Email.String() == email || c.Username.String() == username {
			return true, nil
		}
	}
	return false, nil
}

func (r credentialsRepo) GetByUsername(_ context.Context, username string) (*entity.Credentials, error) {
	for _, c := range r.st.credentials {
		if c.Username.String() == username {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r credentialsRepo) GetByEmail(_ context.Context, email string) (*entity.Credentials, error) {
	for _, c := range r.st.credentials {
		if c.Email.String() == email {
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

type profilesRepo struct{ st *state }

func (r profilesRepo) Create(_ context.Context, p *entity.Profile) error {
	if p.Credentials == nil {
		return repository.ErrNotFound
	}
	if _, ok := r.st.credentials[p.Credentials.OID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range r.st.profiles {
		if existing.Credentials.OID == p.Credentials.OID {
			return repository.ErrConflict
		}
	}
	p.CreatedAt = time.Now().UTC()
	r.st.profiles[p.OID] = *p
	return nil
}

func (r profilesRepo) load(p entity.Profile) *entity.Profile {
	creds := r.st.credentials[p.Credentials.OID]
	p.Credentials = &creds
	return &p
}

func (r profilesRepo) GetByID(_ context.Context, id string) (*entity.Profile, error) {
	p, ok := r.st.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.load(p), nil
}

func (r profilesRepo) GetByCredentialsID(_ context.Context, credentialsID string) (*entity.Profile, error) {
	for _, p := range r.st.profiles {
		if p.Credentials.OID == credentialsID {
			return r.load(p), nil
		}
	}
	return nil, repository.ErrNotFound
}

type channelsRepo struct{ st *state }

func (r channelsRepo) find(channelID, profileID string) int {
	for i, m := range r.st.members {
		if m.channelID == channelID && m.profileID == profileID {
			return i
		}
	}
	return -1
}

func (r channelsRepo) live(channelID string) (entity.Channel, bool) {
	ch, ok := r.st.channels[channelID]
	if !ok || ch.IsDeleted {
		return entity.Channel{}, false
	}
	return ch, true
}

func (r channelsRepo) load(ch entity.Channel) *entity.Channel {
	ch.Members = r.connected(ch.OID)
	return &ch
}

func (r channelsRepo) connected(channelID string) []*entity.Profile {
	profiles := profilesRepo{r.st}
	out := []*entity.Profile{}
	for _, m := range r.st.members {
		if m.channelID != channelID || !m.connected {
			continue
		}
		if p, ok := r.st.profiles[m.profileID]; ok {
			out = append(out, profiles.load(p))
		}
	}
	return out
}

func (r channelsRepo) Create(_ context.Context, author *entity.Profile, ch *entity.Channel) error {
	if _, ok := r.st.channels[ch.OID]; ok {
		return repository.ErrConflict
	}
	now := time.Now().UTC()
	ch.CreatedAt, ch.UpdatedAt = now, now
	stored := *ch
	stored.Members = nil
	r.st.channels[ch.OID] = stored
	r.st.order = append(r.st.order, ch.OID)
	if author != nil {
		r.st.members = append(r.st.members, membership{channelID: ch.OID, profileID: author.OID, connected: true})
	}
	return nil
}

func (r channelsRepo) List(_ context.Context, filters repository.ChannelFilters, profileID string) ([]*entity.Channel, int, error) {
	filters = filters.Normalize()
	var matched []*entity.Channel
	for _, id := range r.st.order {
		ch, ok := r.live(id)
		if !ok {
			continue
		}
		if i := r.find(id, profileID); i < 0 || !r.st.members[i].connected {
			continue
		}
		matched = append(matched, r.load(ch))
	}
	total := len(matched)
	if filters.Offset >= total {
		return []*entity.Channel{}, total, nil
	}
	end := filters.Offset + filters.Limit
	if end > total {
		end = total
	}
	return matched[filters.Offset:end], total, nil
}

func (r channelsRepo) GetByID(_ context.Context, channelID, profileID string, checkMember bool) (*entity.Channel, error) {
	ch, ok := r.live(channelID)
	if !ok {
		return nil, repository.ErrNotFound
	}
	if checkMember && r.find(channelID, profileID) < 0 {
		return nil, repository.ErrNotFound
	}
	return r.load(ch), nil
}

func (r channelsRepo) Update(_ context.Context, ch *entity.Channel) error {
	stored, ok := r.live(ch.OID)
	if !ok {
		return repository.ErrNotFound
	}
	stored.Name, stored.Description, stored.Avatar = ch.Name, ch.Description, ch.Avatar
	stored.UpdatedAt = time.Now().UTC()
	r.st.channels[ch.OID] = stored
	ch.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r channelsRepo) SetAvatar(_ context.Context, channelID, avatar string) error {
	stored, ok := r.live(channelID)
	if !ok {
		return repository.ErrNotFound
	}
	stored.Avatar = &avatar
	stored.UpdatedAt = time.Now().UTC()
	r.st.channels[channelID] = stored
	return nil
}

func (r channelsRepo) Delete(_ context.Context, channelID string) error {
	stored, ok := r.live(channelID)
	if !ok {
		return repository.ErrNotFound
	}
	stored.IsDeleted = true
	r.st.channels[channelID] = stored
	return nil
}

func (r channelsRepo) Members(_ context.Context, channelID string) ([]*entity.Profile, error) {
	return r.connected(channelID), nil
}

func (r channelsRepo) Connect(_ context.Context, channelID, profileID string) (bool, error) {
	i := r.find(channelID, profileID)
	if i < 0 {
		r.st.members = append(r.st.members, membership{channelID: channelID, profileID: profileID, connected: true})
		return true, nil
	}
	if r.st.members[i].connected {
		return false, nil
	}
	r.st.members[i].connected = true
	return true, nil
}

func (r channelsRepo) Disconnect(_ context.Context, channelID, profileID string) (bool, error) {
	i := r.find(channelID, profileID)
	if i < 0 || !r.st.members[i].connected {
		return false, nil
	}
	r.st.members[i].connected = false
	return true, nil
}
