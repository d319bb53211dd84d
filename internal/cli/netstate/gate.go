// Package netstate отслеживает доступность сервера.
package netstate

import "sync"

// Gate хранит последнее известное состояние сети и рассылает переходы подписчикам.
type Gate struct {
	mu     sync.RWMutex
	online bool
	known  bool
	subs   []chan bool
}

// NewGate создаёт шлюз с начальным состоянием online.
func NewGate(online bool) *Gate {
	return &Gate{online: online, known: true}
}

// NewUnknownGate создаёт шлюз, который считает сеть недоступной до первого сигнала.
// Первый Set(true) считается переходом в online.
func NewUnknownGate() *Gate {
	return &Gate{}
}

// IsOnline возвращает состояние по последнему сигналу.
func (g *Gate) IsOnline() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.online
}

// Set обновляет состояние. Возвращает true, если это был переход.
func (g *Gate) Set(online bool) bool {
	g.mu.Lock()
	if g.known && g.online == online {
		g.mu.Unlock()
		return false
	}
	changed := g.online != online
	g.online = online
	g.known = true
	subs := append([]chan bool(nil), g.subs...)
	g.mu.Unlock()

	if !changed {
		return false
	}
	for _, ch := range subs {
		// медленный подписчик получает только последнее состояние
		select {
		case ch <- online:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- online:
			default:
			}
		}
	}
	return true
}

// Subscribe возвращает канал переходов и функцию отписки.
func (g *Gate) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 1)
	g.mu.Lock()
	g.subs = append(g.subs, ch)
	g.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			for i, s := range g.subs {
				if s == ch {
					g.subs = append(g.subs[:i], g.subs[i+1:]...)
					break
				}
			}
		})
	}
}
