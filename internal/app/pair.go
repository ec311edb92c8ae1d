package app

import "github.com/dkeye/Duet/internal/core"

// pair holds at most two occupants in join order.
type pair struct {
	slots [2]core.Connection
	n     int
}

func (p *pair) len() int { return p.n }

func (p *pair) add(c core.Connection) bool {
	if p.n == len(p.slots) {
		return false
	}
	p.slots[p.n] = c
	p.n++
	return true
}

func (p *pair) remove(c core.Connection) bool {
	for i := 0; i < p.n; i++ {
		if p.slots[i] != c {
			continue
		}
		copy(p.slots[i:], p.slots[i+1:p.n])
		p.n--
		p.slots[p.n] = nil
		return true
	}
	return false
}

func (p *pair) has(c core.Connection) bool {
	for i := 0; i < p.n; i++ {
		if p.slots[i] == c {
			return true
		}
	}
	return false
}

func (p *pair) members() []core.Connection {
	out := make([]core.Connection, p.n)
	copy(out, p.slots[:p.n])
	return out
}
