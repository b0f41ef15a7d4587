package engine

import "time"

// SessionView is a read-only copy of a session's state in display order.
type SessionView struct {
	ID        string     `json:"id"`
	PageURL   string     `json:"page_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Duration  *float64   `json:"duration,omitempty"`
	Links     []LinkView `json:"links"`
}

// Sessions returns a snapshot of every session in creation order. Blocks
// until the loop services the request.
func (e *Engine) Sessions() []SessionView {
	reply := make(chan []SessionView, 1)
	select {
	case e.tasks <- func() {
		out := make([]SessionView, 0, len(e.order))
		for _, id := range e.order {
			out = append(out, e.sessions[id].view())
		}
		reply <- out
	}:
	case <-e.done:
		return nil
	}

	select {
	case out := <-reply:
		return out
	case <-e.done:
		return nil
	}
}

// Session returns a snapshot of one session.
func (e *Engine) Session(id string) (SessionView, bool) {
	type result struct {
		view SessionView
		ok   bool
	}
	reply := make(chan result, 1)
	select {
	case e.tasks <- func() {
		s, ok := e.sessions[id]
		if !ok {
			reply <- result{}
			return
		}
		reply <- result{view: s.view(), ok: true}
	}:
	case <-e.done:
		return SessionView{}, false
	}

	select {
	case r := <-reply:
		return r.view, r.ok
	case <-e.done:
		return SessionView{}, false
	}
}

func (s *Session) view() SessionView {
	view := SessionView{
		ID:        s.ID,
		PageURL:   s.PageURL,
		CreatedAt: s.CreatedAt,
		Duration:  s.Duration,
		Links:     make([]LinkView, 0, len(s.links)),
	}
	for _, link := range s.sortedLinks() {
		view.Links = append(view.Links, viewOf(link))
	}
	return view
}
