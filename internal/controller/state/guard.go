package state

import (
	"sync"
)

// Key пара (пользователь Telegram, слот), для которой выполняется действие
type Key struct {
	TelegramID int64
	SlotID     string
}

// Guard не даёт пользователю запустить второе действие над тем же слотом,
// пока первое не завершилось
type Guard struct {
	mu   sync.Mutex
	busy map[Key]struct{}
}

func NewGuard() *Guard {
	return &Guard{
		busy: make(map[Key]struct{}),
	}
}

// TryAcquire занимает пару; ok=false если для неё уже идёт действие.
// release нужно вызвать ровно один раз, повторные вызовы ничего не делают.
func (g *Guard) TryAcquire(key Key) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.busy[key]; exists {
		return func() {}, false
	}
	g.busy[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, key)
			g.mu.Unlock()
		})
	}, true
}

// Busy сообщает, занята ли пара
func (g *Guard) Busy(key Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, exists := g.busy[key]
	return exists
}
