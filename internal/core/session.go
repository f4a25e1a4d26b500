package core

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ChatRole identifies who produced a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn in the session's chat log.
type ChatMessage struct {
	Role    ChatRole  `json:"role"`
	Text    string    `json:"text"`
	IsError bool      `json:"is_error,omitempty"`
	At      time.Time `json:"at"`
}

// TurnState tracks the interaction state machine for a session.
type TurnState int

const (
	TurnIdle TurnState = iota
	TurnAwaitingResponse
)

// ErrTurnInProgress is returned when a turn is submitted while another is
// still awaiting the interpreter. Typed and voice submissions share this
// guard, so a second voice result cannot queue behind an in-flight call.
var ErrTurnInProgress = errors.New("a chat turn is already awaiting a response")

// ApologyMessage is appended when the interpreter call fails.
const ApologyMessage = "Maf kijiyega, main thora confuse ho gaya. Please dobara bataiye."

// Session owns the chat log and both ledgers for one shop. All reads and
// writes go through the mutex, so readers never observe a partially
// reconciled ledger. A Session has exactly one turn in flight at a time.
type Session struct {
	mu              sync.Mutex
	shopName        string
	state           TurnState
	messages        []ChatMessage
	stock           []StockItem
	credits         []CreditEntry
	reportRequested bool
}

// SessionSnapshot is a read-only copy of the session state plus the derived
// aggregates, safe to hand to presentation layers.
type SessionSnapshot struct {
	ShopName               string          `json:"shop_name"`
	Messages               []ChatMessage   `json:"messages"`
	Stock                  []StockItem     `json:"stock"`
	Credits                []CreditEntry   `json:"credits"`
	TotalStockValue        decimal.Decimal `json:"total_stock_value"`
	TotalCreditOutstanding decimal.Decimal `json:"total_credit_outstanding"`
	ReportRequested        bool            `json:"report_requested"`
}

func NewSession(shopName string) *Session {
	return &Session{shopName: shopName}
}

func (s *Session) ShopName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shopName
}

// Rename updates the shop name, e.g. after setup completes.
func (s *Session) Rename(shopName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shopName = shopName
}

// SeedStock reconciles a bootstrap batch into the ledgers. Used once after
// the initial-stock blob is parsed.
func (s *Session) SeedStock(batch []LineItem, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock, s.credits, _ = Reconcile(s.stock, s.credits, batch, now)
}

// StockNames returns the current stock item names in ledger order.
func (s *Session) StockNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.stock))
	for i, item := range s.stock {
		names[i] = item.Name
	}
	return names
}

// BeginTurn moves the session from Idle to AwaitingResponse and appends the
// user's utterance to the chat log (optimistic echo). Returns
// ErrTurnInProgress when another turn is already awaiting a response.
func (s *Session) BeginTurn(text string, now time.Time) (ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != TurnIdle {
		return ChatMessage{}, ErrTurnInProgress
	}
	s.state = TurnAwaitingResponse
	msg := ChatMessage{Role: RoleUser, Text: text, At: now}
	s.messages = append(s.messages, msg)
	return msg, nil
}

// CompleteTurn applies a successful interpreter result: appends the
// assistant message, reconciles the batch into the ledgers, raises the
// report flag when asked for, and returns the session to Idle.
func (s *Session) CompleteTurn(res *InterpretResult, now time.Time) (ChatMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := res.ConfirmationMessage
	if text == "" {
		text = "Ok, noted."
	}
	msg := ChatMessage{Role: RoleAssistant, Text: text, IsError: res.HasError, At: now}
	s.messages = append(s.messages, msg)

	if len(res.Items) > 0 {
		s.stock, s.credits, _ = Reconcile(s.stock, s.credits, res.Items, now)
	}
	if res.GenerateReport {
		s.reportRequested = true
	}
	s.state = TurnIdle
	return msg, res.GenerateReport
}

// FailTurn records an interpreter failure: the fixed apology is appended
// with the error marker, the ledgers stay untouched, and the session
// returns to Idle so the user can resubmit.
func (s *Session) FailTurn(now time.Time) ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := ChatMessage{Role: RoleAssistant, Text: ApologyMessage, IsError: true, At: now}
	s.messages = append(s.messages, msg)
	s.state = TurnIdle
	return msg
}

// AcknowledgeReport clears the report flag after the report view was shown.
func (s *Session) AcknowledgeReport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportRequested = false
}

// Snapshot returns a consistent copy of the session state and aggregates.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{
		ShopName:               s.shopName,
		Messages:               append([]ChatMessage(nil), s.messages...),
		Stock:                  append([]StockItem(nil), s.stock...),
		Credits:                append([]CreditEntry(nil), s.credits...),
		TotalStockValue:        TotalStockValue(s.stock),
		TotalCreditOutstanding: TotalCreditOutstanding(s.credits),
		ReportRequested:        s.reportRequested,
	}
}
