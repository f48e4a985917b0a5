package sheets

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session 一次上传对应的编辑会话
type Session struct {
	ID        string
	Workbook  *Workbook
	CreatedAt time.Time
}

// Store 进程内会话存储,uuid 作键
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore 创建会话存储
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Put 注册工作簿并分配会话 id
func (s *Store) Put(wb *Workbook) *Session {
	session := &Session{
		ID:        uuid.NewString(),
		Workbook:  wb,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get 查找会话
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Delete 删除会话
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len 当前会话数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
