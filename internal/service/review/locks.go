package review

import (
	"sync"

	"github.com/google/uuid"
)

// studentLocks serializes card mutations per student. A review, a session
// start, and the archival sweep all take the student's lock, so two
// concurrent operations cannot race on the read-modify-write of a card's
// scheduling fields.
type studentLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newStudentLocks() *studentLocks {
	return &studentLocks{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// forStudent returns the mutex for a student, creating it on first use.
// Locks are never removed; the map grows with the active student set.
func (l *studentLocks) forStudent(studentID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[studentID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[studentID] = lock
	}
	return lock
}
