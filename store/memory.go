package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"safesphere/models"
)

// MemoryStore keeps every collection in process memory. A single RWMutex
// guards all collections so that compound check-then-act operations run in
// one critical section.
type MemoryStore struct {
	mu sync.RWMutex

	users   map[int64]*models.User
	byEmail map[string]int64

	requests []*models.FriendRequest
	edges    map[int64][]models.FriendEdge
	alerts   []models.Alert

	locations map[int64][]models.Location

	nextUserID     int64
	nextRequestID  int64
	nextEdgeID     int64
	nextAlertID    int64
	nextLocationID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[int64]*models.User),
		byEmail:   make(map[string]int64),
		edges:     make(map[int64][]models.FriendEdge),
		locations: make(map[int64][]models.Location),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[u.Email]; exists {
		return models.User{}, ErrDuplicateEmail
	}
	s.nextUserID++
	u.ID = s.nextUserID
	stored := u.Clone()
	s.users[u.ID] = &stored
	s.byEmail[u.Email] = u.ID
	return stored.Clone(), nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return u.Clone(), nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return s.users[id].Clone(), nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, id int64, upd models.ProfileUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	upd.Apply(u)
	return u.Clone(), nil
}

func (s *MemoryStore) SetStatus(_ context.Context, id int64, status models.SafetyStatus, at time.Time, alert *models.Alert) (models.User, *models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return models.User{}, nil, ErrNotFound
	}
	u.Status = status
	u.IsSafe = status == models.StatusSafe
	u.LastSafeUpdate = at

	var created *models.Alert
	if alert != nil {
		s.nextAlertID++
		a := *alert
		a.ID = s.nextAlertID
		a.UserID = id
		s.alerts = append(s.alerts, a)
		created = &a
	}
	return u.Clone(), created, nil
}

func (s *MemoryStore) CreateFriendRequest(_ context.Context, r models.FriendRequest) (models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.edges[r.FromUserID] {
		if e.FriendID == r.ToUserID {
			return models.FriendRequest{}, ErrAlreadyFriends
		}
	}
	for _, existing := range s.requests {
		if existing.FromUserID == r.FromUserID && existing.ToUserID == r.ToUserID && existing.Status == models.FriendRequestPending {
			return models.FriendRequest{}, ErrDuplicateRequest
		}
	}
	s.nextRequestID++
	r.ID = s.nextRequestID
	r.Status = models.FriendRequestPending
	stored := r
	s.requests = append(s.requests, &stored)
	return r, nil
}

func (s *MemoryStore) GetFriendRequest(_ context.Context, id int64) (models.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := s.findRequest(id)
	if r == nil {
		return models.FriendRequest{}, ErrNotFound
	}
	return *r, nil
}

func (s *MemoryStore) ListIncomingRequests(_ context.Context, toUserID int64) ([]models.FriendRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.FriendRequest{}
	for _, r := range s.requests {
		if r.ToUserID == toUserID && r.Status == models.FriendRequestPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *MemoryStore) ResolveFriendRequest(_ context.Context, id, toUserID int64, status models.FriendRequestStatus, at time.Time) (models.FriendRequest, *models.FriendEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findRequest(id)
	if r == nil || r.ToUserID != toUserID {
		return models.FriendRequest{}, nil, ErrNotFound
	}
	if r.Status != models.FriendRequestPending {
		return models.FriendRequest{}, nil, ErrRequestNotPending
	}
	r.Status = status

	var edge *models.FriendEdge
	if status == models.FriendRequestAccepted {
		s.nextEdgeID++
		e := models.FriendEdge{
			ID:        s.nextEdgeID,
			UserID:    r.FromUserID,
			FriendID:  r.ToUserID,
			Status:    models.FriendRequestAccepted,
			CreatedAt: at,
		}
		s.edges[e.UserID] = append(s.edges[e.UserID], e)
		edge = &e
	}
	return *r, edge, nil
}

func (s *MemoryStore) ListFriendEdges(_ context.Context, userID int64) ([]models.FriendEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := s.edges[userID]
	out := make([]models.FriendEdge, len(edges))
	copy(out, edges)
	return out, nil
}

func (s *MemoryStore) ListAlerts(_ context.Context, userIDs []int64) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = struct{}{}
	}
	out := []models.Alert{}
	for _, a := range s.alerts {
		if _, ok := wanted[a.UserID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateLocation(_ context.Context, l models.Location) (models.Location, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextLocationID++
	l.ID = s.nextLocationID
	s.locations[l.UserID] = append(s.locations[l.UserID], l)
	return l, nil
}

func (s *MemoryStore) ListLocations(_ context.Context, userID int64) ([]models.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	locs := s.locations[userID]
	out := make([]models.Location, len(locs))
	copy(out, locs)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// findRequest is not thread-safe; caller must hold s.mu.
func (s *MemoryStore) findRequest(id int64) *models.FriendRequest {
	for _, r := range s.requests {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// MemorySessionStore keeps sessions in process memory with lazy expiry.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) CreateSession(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemorySessionStore) GetSession(_ context.Context, id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return models.Session{}, ErrNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return models.Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *MemorySessionStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}
