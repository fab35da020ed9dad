package service

import (
	"context"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/05Ashutosh/food-recipe/internal/media"
	"github.com/05Ashutosh/food-recipe/internal/model"
	"github.com/05Ashutosh/food-recipe/internal/queue"
	"github.com/05Ashutosh/food-recipe/internal/repository"
)

// fakeTokens is an in-memory TokenStore.
type fakeTokens struct {
	mu     sync.Mutex
	hashes map[uint64]string
	known  map[uint64]bool
}

func newFakeTokens(users ...uint64) *fakeTokens {
	f := &fakeTokens{hashes: map[uint64]string{}, known: map[uint64]bool{}}
	for _, id := range users {
		f.known[id] = true
	}
	return f
}

func (f *fakeTokens) SetRefresh(_ context.Context, id uint64, h string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.known[id] {
		return repository.ErrNotFound
	}
	f.hashes[id] = h
	return nil
}

func (f *fakeTokens) GetRefresh(_ context.Context, id uint64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.known[id] {
		return "", repository.ErrNotFound
	}
	return f.hashes[id], nil
}

func (f *fakeTokens) RotateRefresh(_ context.Context, id uint64, old, next string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hashes[id] != old {
		return false, nil
	}
	f.hashes[id] = next
	return true, nil
}

func (f *fakeTokens) ClearRefresh(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.hashes, id)
	return nil
}

// fakeUsers is an in-memory user store keyed by id.
type fakeUsers struct {
	mu     sync.Mutex
	byID   map[uint64]model.User
	nextID uint64
	tokens *fakeTokens
}

func newFakeUsers(tokens *fakeTokens) *fakeUsers {
	return &fakeUsers{byID: map[uint64]model.User{}, tokens: tokens}
}

func (f *fakeUsers) add(u model.User) model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if u.ID == 0 {
		u.ID = f.nextID
	}
	f.byID[u.ID] = u
	if f.tokens != nil {
		f.tokens.mu.Lock()
		f.tokens.known[u.ID] = true
		f.tokens.mu.Unlock()
	}
	return u
}

func (f *fakeUsers) find(match func(model.User) bool) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if match(u) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) (uint64, error) {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if ok, _ := f.Exists(context.Background(), u.Username, u.Email); ok {
		return 0, repository.ErrDuplicate
	}
	*u = f.add(*u)
	return u.ID, nil
}

func (f *fakeUsers) Exists(_ context.Context, username, email string) (bool, error) {
	_, err := f.find(func(u model.User) bool {
		return u.Username == strings.ToLower(username) || u.Email == strings.ToLower(email)
	})
	return err == nil, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	return f.find(func(u model.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByUsername(_ context.Context, name string) (model.User, error) {
	return f.find(func(u model.User) bool { return u.Username == strings.ToLower(name) })
}

func (f *fakeUsers) GetByLogin(_ context.Context, login string) (model.User, error) {
	return f.find(func(u model.User) bool {
		return u.Username == strings.ToLower(login) || u.Email == strings.ToLower(login)
	})
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id uint64, p repository.ProfileUpdate) error {
	if p.Username != nil {
		if other, err := f.GetByUsername(context.Background(), *p.Username); err == nil && other.ID != id {
			return repository.ErrDuplicate
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.FullName, p.FullName)
	set(&u.Email, p.Email)
	set(&u.Bio, p.Bio)
	set(&u.Username, p.Username)
	set(&u.Avatar, p.Avatar)
	set(&u.CoverImage, p.CoverImage)
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	f.byID[id] = u
	return nil
}

// fakeFollows is an in-memory follow graph.
type fakeFollows struct {
	mu    sync.Mutex
	edges map[[2]uint64]bool
}

func newFakeFollows() *fakeFollows { return &fakeFollows{edges: map[[2]uint64]bool{}} }

func (f *fakeFollows) Follow(_ context.Context, a, b uint64) (bool, model.FollowCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := !f.edges[[2]uint64{a, b}]
	f.edges[[2]uint64{a, b}] = true
	return changed, f.counts(b), nil
}

func (f *fakeFollows) Unfollow(_ context.Context, a, b uint64) (bool, model.FollowCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	changed := f.edges[[2]uint64{a, b}]
	delete(f.edges, [2]uint64{a, b})
	return changed, f.counts(b), nil
}

func (f *fakeFollows) Counts(_ context.Context, id uint64) (model.FollowCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts(id), nil
}

func (f *fakeFollows) counts(id uint64) model.FollowCounts {
	var c model.FollowCounts
	for e := range f.edges {
		if e[1] == id {
			c.FollowersCount++
		}
		if e[0] == id {
			c.FollowingCount++
		}
	}
	return c
}

// fakeNotifications is an in-memory NotificationStore.
type fakeNotifications struct {
	mu      sync.Mutex
	rows    []model.Notification
	users   *fakeUsers
	failAdd error
	clock   time.Time
}

func (f *fakeNotifications) Create(_ context.Context, recipient, sender uint64, msg string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd != nil {
		return 0, f.failAdd
	}
	f.clock = f.clock.Add(time.Millisecond)
	n := model.Notification{ID: uint64(len(f.rows) + 1), Message: msg, RecipientID: recipient, SenderID: sender, CreatedAt: f.clock}
	f.rows = append(f.rows, n)
	return n.ID, nil
}

func (f *fakeNotifications) GetWithSender(ctx context.Context, id uint64) (model.Notification, error) {
	f.mu.Lock()
	if id == 0 || int(id) > len(f.rows) {
		f.mu.Unlock()
		return model.Notification{}, repository.ErrNotFound
	}
	n := f.rows[id-1]
	f.mu.Unlock()
	if f.users != nil {
		if u, err := f.users.GetByID(ctx, n.SenderID); err == nil {
			s := u.Summary()
			n.Sender = &s
		}
	}
	return n, nil
}

func (f *fakeNotifications) ListForRecipient(_ context.Context, recipient uint64, limit int) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.rows {
		if n.RecipientID == recipient {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotifications) forRecipient(id uint64) []model.Notification {
	out, _ := f.ListForRecipient(context.Background(), id, 1<<20)
	return out
}

// fakePusher records realtime deliveries.
type fakePusher struct {
	mu     sync.Mutex
	pushes []pushed
}

type pushed struct {
	userID  uint64
	event   string
	payload any
}

func (p *fakePusher) Publish(userID uint64, event string, payload any) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushed{userID, event, payload})
	return 1
}

// fakeEvents records broker events.
type fakeEvents struct {
	mu     sync.Mutex
	events []queue.SocialEvent
}

func (f *fakeEvents) PublishSocial(_ context.Context, ev queue.SocialEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

// fakeMedia is an in-memory media.Store. Upload removes the local file like
// the real store does.
type fakeMedia struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	failOn    map[string]bool
	deleteErr error
	duration  float64
}

func (m *fakeMedia) Upload(_ context.Context, path string) (media.Asset, error) {
	defer os.Remove(path)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn[path] {
		return media.Asset{}, media.ErrEmptyFile
	}
	url := "https://media.test/" + strings.TrimPrefix(path, os.TempDir())
	m.uploaded = append(m.uploaded, url)
	return media.Asset{URL: url, PublicID: path, Duration: m.duration}, nil
}

func (m *fakeMedia) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	return m.deleteErr
}

// fakeRecipes is an in-memory RecipeStore. List honors the query text,
// owner and type filters and pages in id order.
type fakeRecipes struct {
	mu        sync.Mutex
	rows      map[uint64]model.RecipeWithLikes
	nextID    uint64
	createErr error
	lastQuery model.RecipeQuery
}

func newFakeRecipes() *fakeRecipes { return &fakeRecipes{rows: map[uint64]model.RecipeWithLikes{}} }

func (f *fakeRecipes) put(r model.Recipe) model.Recipe {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r.ID = f.nextID
	f.rows[r.ID] = model.RecipeWithLikes{Recipe: r}
	return r
}

func (f *fakeRecipes) Create(_ context.Context, r *model.Recipe) error {
	if f.createErr != nil {
		return f.createErr
	}
	*r = f.put(*r)
	return nil
}

func (f *fakeRecipes) GetByID(_ context.Context, id uint64) (model.RecipeWithLikes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return model.RecipeWithLikes{}, repository.ErrNotFound
	}
	return r, nil
}

func (f *fakeRecipes) List(_ context.Context, q model.RecipeQuery) ([]model.RecipeWithLikes, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	var match []model.RecipeWithLikes
	for _, r := range f.rows {
		if q.Query != "" && !strings.Contains(strings.ToLower(r.Title+" "+r.Description), strings.ToLower(q.Query)) {
			continue
		}
		if q.OwnerID != 0 && r.OwnerID != q.OwnerID {
			continue
		}
		if q.Type != "" && r.Type != q.Type {
			continue
		}
		match = append(match, r)
	}
	sort.Slice(match, func(i, j int) bool { return match[i].ID < match[j].ID })
	total := int64(len(match))
	start := q.Offset()
	if start > len(match) {
		start = len(match)
	}
	end := start + q.Limit
	if end > len(match) {
		end = len(match)
	}
	return match[start:end], total, nil
}

func (f *fakeRecipes) ListByOwner(ctx context.Context, owner uint64) ([]model.RecipeWithLikes, error) {
	out, _, err := f.List(ctx, model.RecipeQuery{OwnerID: owner, Limit: 1 << 20})
	return out, err
}

func (f *fakeRecipes) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

// fakeVideos is an in-memory VideoStore.
type fakeVideos struct {
	mu     sync.Mutex
	rows   map[uint64]model.Video
	nextID uint64
}

func newFakeVideos() *fakeVideos { return &fakeVideos{rows: map[uint64]model.Video{}} }

func (f *fakeVideos) Create(_ context.Context, v *model.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	v.ID = f.nextID
	f.rows[v.ID] = *v
	return nil
}

func (f *fakeVideos) GetByID(_ context.Context, id uint64) (model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.rows[id]
	if !ok {
		return model.Video{}, repository.ErrNotFound
	}
	return v, nil
}

func (f *fakeVideos) List(_ context.Context, q model.VideoQuery) ([]model.Video, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Video
	for _, v := range f.rows {
		if q.OwnerID == 0 || v.OwnerID == q.OwnerID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, total, nil
}

func (f *fakeVideos) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

// fakeLikes is an in-memory LikeStore.
type fakeLikes struct {
	mu    sync.Mutex
	liked map[string]bool
}

func newFakeLikes() *fakeLikes { return &fakeLikes{liked: map[string]bool{}} }

func likeKey(u uint64, t model.LikeTarget, id uint64) string {
	return strings.Join([]string{string(t), uintStr(u), uintStr(id)}, ":")
}

func uintStr(v uint64) string { return strconv.FormatUint(v, 10) }

func (f *fakeLikes) Add(_ context.Context, u uint64, t model.LikeTarget, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := likeKey(u, t, id)
	if f.liked[k] {
		return false, nil
	}
	f.liked[k] = true
	return true, nil
}

func (f *fakeLikes) Remove(_ context.Context, u uint64, t model.LikeTarget, id uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := likeKey(u, t, id)
	had := f.liked[k]
	delete(f.liked, k)
	return had, nil
}

func (f *fakeLikes) Toggle(ctx context.Context, u uint64, t model.LikeTarget, id uint64) (bool, error) {
	if removed, _ := f.Remove(ctx, u, t, id); removed {
		return false, nil
	}
	return f.Add(ctx, u, t, id)
}

func (f *fakeLikes) LikedVideos(context.Context, uint64) ([]model.LikedVideo, error) {
	return []model.LikedVideo{}, nil
}

func (f *fakeLikes) LikedRecipes(context.Context, uint64) ([]model.RecipeWithLikes, error) {
	return []model.RecipeWithLikes{}, nil
}
