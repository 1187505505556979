// Package memstore provides in-memory implementations of the service
// store interfaces and the media file store. They back the service and
// handler tests, which run the real business logic without a database.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"sync"

	"microblog-server/internal/models"
	"microblog-server/internal/repository"
)

// DB holds all in-memory records behind one lock
type DB struct {
	mu       sync.Mutex
	users    []*models.User
	posts    []*models.Post
	messages []*models.Message
	follows  map[string]map[string]bool
}

// New creates an empty in-memory database
func New() *DB {
	return &DB{follows: make(map[string]map[string]bool)}
}

// Users returns the user store view
func (db *DB) Users() *Users { return &Users{db: db} }

// Posts returns the post store view
func (db *DB) Posts() *Posts { return &Posts{db: db} }

// Messages returns the message store view
func (db *DB) Messages() *Messages { return &Messages{db: db} }

// Follows returns the follow store view
func (db *DB) Follows() *Follows { return &Follows{db: db} }

func (db *DB) userByID(id string) *models.User {
	for _, u := range db.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// Users implements services.UserStore
type Users struct {
	db *DB
}

func (s *Users) Create(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u := *user
	s.db.users = append(s.db.users, &u)
	return nil
}

func (s *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.get(func(u *models.User) bool { return u.ID == id })
}

func (s *Users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.get(func(u *models.User) bool { return u.Username == username })
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.get(func(u *models.User) bool { return u.Email == email })
}

func (s *Users) get(match func(*models.User) bool) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
}

func (s *Users) UsernameExists(ctx context.Context, username, excludeID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Username == username && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Users) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Users) Update(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, u := range s.db.users {
		if u.ID == user.ID {
			copied := *user
			s.db.users[i] = &copied
			return nil
		}
	}
	return fmt.Errorf("user not found: %w", repository.ErrNotFound)
}

// Posts implements services.PostStore
type Posts struct {
	db *DB
}

func (s *Posts) Create(ctx context.Context, post *models.Post) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	p := *post
	s.db.posts = append(s.db.posts, &p)
	return nil
}

func (s *Posts) GetByID(ctx context.Context, id string) (*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, p := range s.db.posts {
		if p.ID == id {
			return s.withAuthor(p), nil
		}
	}
	return nil, fmt.Errorf("post not found: %w", repository.ErrNotFound)
}

func (s *Posts) ListAll(ctx context.Context) ([]*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.listLocked(func(*models.Post) bool { return true }), nil
}

func (s *Posts) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.listLocked(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (s *Posts) listLocked(match func(*models.Post) bool) []*models.Post {
	var out []*models.Post
	for _, p := range s.db.posts {
		if match(p) {
			out = append(out, s.withAuthor(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Posts) withAuthor(p *models.Post) *models.Post {
	copied := *p
	if author := s.db.userByID(p.UserID); author != nil {
		copied.AuthorUsername = author.Username
		copied.AuthorImage = author.ImageFile
	}
	return &copied
}

func (s *Posts) Delete(ctx context.Context, id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for i, p := range s.db.posts {
		if p.ID == id {
			s.db.posts = append(s.db.posts[:i], s.db.posts[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("post not found: %w", repository.ErrNotFound)
}

// Messages implements services.MessageStore
type Messages struct {
	db *DB
}

func (s *Messages) Create(ctx context.Context, msg *models.Message) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	m := *msg
	s.db.messages = append(s.db.messages, &m)
	return nil
}

func (s *Messages) ListBetween(ctx context.Context, userAID, userBID string) ([]*models.Message, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*models.Message
	for _, m := range s.db.messages {
		if (m.SenderID == userAID && m.RecipientID == userBID) ||
			(m.SenderID == userBID && m.RecipientID == userAID) {
			copied := *m
			if sender := s.db.userByID(m.SenderID); sender != nil {
				copied.SenderUsername = sender.Username
			}
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Messages) ListPartners(ctx context.Context, userID string) ([]*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	seen := make(map[string]bool)
	var out []*models.User
	for _, m := range s.db.messages {
		partnerID := ""
		switch {
		case m.SenderID == userID:
			partnerID = m.RecipientID
		case m.RecipientID == userID:
			partnerID = m.SenderID
		default:
			continue
		}
		if seen[partnerID] {
			continue
		}
		seen[partnerID] = true
		if partner := s.db.userByID(partnerID); partner != nil {
			copied := *partner
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Follows implements services.FollowStore
type Follows struct {
	db *DB
}

func (s *Follows) Create(ctx context.Context, followerID, followedID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.follows[followerID] == nil {
		s.db.follows[followerID] = make(map[string]bool)
	}
	s.db.follows[followerID][followedID] = true
	return nil
}

func (s *Follows) Delete(ctx context.Context, followerID, followedID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	delete(s.db.follows[followerID], followedID)
	return nil
}

func (s *Follows) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.follows[followerID][followedID], nil
}

// Files implements storage.FileStore in memory
type Files struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewFiles creates an empty in-memory file store
func NewFiles() *Files {
	return &Files{objects: make(map[string][]byte)}
}

func (s *Files) Save(ctx context.Context, folder, filename string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[folder+"/"+filename] = data
	return nil
}

func (s *Files) Remove(ctx context.Context, folder, filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := folder + "/" + filename
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("remove %s: %w", key, fs.ErrNotExist)
	}
	delete(s.objects, key)
	return nil
}

func (s *Files) URL(folder, filename string) string {
	return "/media/" + folder + "/" + filename
}

// Has reports whether a file exists
func (s *Files) Has(folder, filename string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[folder+"/"+filename]
	return ok
}

// Data returns a stored file's contents as a reader
func (s *Files) Data(folder, filename string) io.Reader {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.NewReader(s.objects[folder+"/"+filename])
}

// Count returns the number of stored files
func (s *Files) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
