package testutil

import "sync"

// RecordingNavigator records navigations for assertions. The current
// path can be preset to simulate where the user is.
type RecordingNavigator struct {
	mu      sync.Mutex
	current string
	visited []string
}

// NewRecordingNavigator creates a navigator positioned at the given
// path.
func NewRecordingNavigator(path string) *RecordingNavigator {
	return &RecordingNavigator{current: path}
}

// Navigate implements session.Navigator.
func (n *RecordingNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
	n.visited = append(n.visited, path)
}

// Path implements session.Navigator.
func (n *RecordingNavigator) Path() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Visited returns every navigation target in order.
func (n *RecordingNavigator) Visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.visited))
	copy(out, n.visited)
	return out
}
