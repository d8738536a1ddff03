// Package navigation keeps the per-chat screen history that backs the bot's
// "back" button.
package navigation

import "storebot/internal/catalog"

// State identifies a bot screen.
type State string

const (
	StateMain       State = "main"
	StateCategories State = "categories"
	StateOptions    State = "options"
	StateProducts   State = "products"
	StateProduct    State = "product"
	StateQuantity   State = "quantity"
	StateCart       State = "cart"
	StateCheckout   State = "checkout"
	StateOrders     State = "orders"
	StateOrder      State = "order"
	StateInfo       State = "info"
)

// DefaultHistoryLimit caps History when no limit is configured.
const DefaultHistoryLimit = 10

// Frame is everything needed to redraw one screen.
type Frame struct {
	State     State             `json:"state"`
	Dimension catalog.Dimension `json:"dimension,omitempty"`
	Selection catalog.Selection `json:"selection,omitempty"`
	Page      int               `json:"page,omitempty"`
	ProductID uint              `json:"product_id,omitempty"`
	OrderID   uint              `json:"order_id,omitempty"`
}

// Session is the navigation state of one chat.
type Session struct {
	Current  Frame   `json:"current"`
	Quantity int     `json:"quantity,omitempty"`
	History  []Frame `json:"history,omitempty"`

	limit int
}

func NewSession(limit int) *Session {
	s := &Session{}
	s.SetLimit(limit)
	s.Reset()
	return s
}

func (s *Session) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	s.limit = limit
}

// Push saves the current screen and makes next current. The oldest frame is
// dropped once the history is full.
func (s *Session) Push(next Frame) {
	if s.limit <= 0 {
		s.limit = DefaultHistoryLimit
	}
	if s.Current.State != "" {
		s.History = append(s.History, cloneFrame(s.Current))
	}
	if over := len(s.History) - s.limit; over > 0 {
		s.History = append([]Frame(nil), s.History[over:]...)
	}
	s.Current = cloneFrame(next)
}

// Replace swaps the current screen without touching history (page flips,
// quantity changes).
func (s *Session) Replace(f Frame) {
	s.Current = cloneFrame(f)
}

// Pop restores the previous screen. It returns false when there is nothing to
// go back to.
func (s *Session) Pop() (Frame, bool) {
	if len(s.History) == 0 {
		return Frame{}, false
	}
	last := s.History[len(s.History)-1]
	s.History = s.History[:len(s.History)-1]
	s.Current = last
	return cloneFrame(last), true
}

// Reset returns the chat to the main menu with an empty history.
func (s *Session) Reset() {
	s.Current = Frame{State: StateMain}
	s.History = nil
	s.Quantity = 0
}

func (s *Session) Depth() int {
	return len(s.History)
}

func cloneFrame(f Frame) Frame {
	if f.Selection != nil {
		f.Selection = f.Selection.Clone()
	}
	return f
}
