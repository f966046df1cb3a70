package attendance

import "sync"

// employeeLocks serializes transitions per employee. Each transition is a
// read-modify-write of status plus durations; the lock keeps the status
// guard and the save atomic for a single employee while leaving different
// employees fully parallel.
type employeeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newEmployeeLocks() *employeeLocks {
	return &employeeLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *employeeLocks) Lock(employeeID string) func() {
	l.mu.Lock()
	m, ok := l.locks[employeeID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[employeeID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
