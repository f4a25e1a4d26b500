package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"dukaan-guru/internal/ai"
	"dukaan-guru/internal/core"
	"dukaan-guru/internal/report"
	"dukaan-guru/internal/share"
	"dukaan-guru/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrNotSetUp means no shop profile has been saved yet.
	ErrNotSetUp = errors.New("shop is not set up yet")
	// ErrEmptyUtterance rejects blank chat submissions.
	ErrEmptyUtterance = errors.New("utterance is empty")
	// ErrEmptyShopName rejects setup without a shop name.
	ErrEmptyShopName = errors.New("shop name is required")
	// ErrInvalidPhone rejects waitlist signups with short phone numbers.
	ErrInvalidPhone = errors.New("please enter a valid mobile number")
	// ErrShareDisabled means no messaging channel is configured.
	ErrShareDisabled = errors.New("sharing is not configured")
	// ErrNoTranscriber means no speech capture capability is available.
	ErrNoTranscriber = errors.New("voice capture is not available")
)

// Transcriber captures one utterance of speech as text. Speech capture is a
// platform capability; implementations live with the host platform and the
// core never depends on one.
type Transcriber interface {
	TranscribeOnce(ctx context.Context) (string, error)
}

// LedgerSnapshot is the read model handed to presentation layers.
type LedgerSnapshot struct {
	ShopName               string             `json:"shop_name"`
	Stock                  []core.StockItem   `json:"stock"`
	Credits                []core.CreditEntry `json:"credits"`
	TotalStockValue        decimal.Decimal    `json:"total_stock_value"`
	TotalCreditOutstanding decimal.Decimal    `json:"total_credit_outstanding"`
}

// TurnResult is the outcome of one chat turn: the messages appended to the
// chat log (user echo plus assistant reply), the report flag, and the ledger
// state after reconciliation.
type TurnResult struct {
	Messages        []core.ChatMessage `json:"messages"`
	ReportRequested bool               `json:"report_requested"`
	Ledger          LedgerSnapshot     `json:"ledger"`
}

// ReportResult carries the share text and the aggregates it was built from.
type ReportResult struct {
	ShareText              string          `json:"share_text"`
	TotalStockValue        decimal.Decimal `json:"total_stock_value"`
	TotalCreditOutstanding decimal.Decimal `json:"total_credit_outstanding"`
	GeneratedAt            time.Time       `json:"generated_at"`
}

// ApplicationService is the single interface all UI adapters (web, REPL)
// call. It decouples presentation from the session and ledgers; no display
// logic lives behind it.
type ApplicationService interface {
	// Setup returns the persisted shop profile, or ErrNotSetUp.
	Setup(ctx context.Context) (*store.SetupRecord, error)

	// CompleteSetup stores the shop profile, parses the free-text stock blob,
	// and seeds a fresh session ledger from it. Persistence failures are
	// logged and swallowed; the in-memory session is always seeded.
	CompleteSetup(ctx context.Context, name, stockBlob string) (*LedgerSnapshot, error)

	// SubmitUtterance runs one chat turn: echoes the user message, calls the
	// intent interpreter under the turn timeout, reconciles the returned
	// batch, and reports whether a report view was requested. While a turn
	// is awaiting a response, further submissions fail with
	// core.ErrTurnInProgress. Interpreter failures are not errors at this
	// boundary: the turn completes with the fixed apology message.
	SubmitUtterance(ctx context.Context, text string) (*TurnResult, error)

	// SubmitVoice captures one spoken utterance via the configured
	// Transcriber and submits it like a typed message.
	SubmitVoice(ctx context.Context) (*TurnResult, error)

	// Ledger returns the current session snapshot.
	Ledger(ctx context.Context) (*LedgerSnapshot, error)

	// ChatLog returns the session chat messages in order.
	ChatLog(ctx context.Context) ([]core.ChatMessage, error)

	// Report builds the share-text summary and clears the pending
	// report-view flag.
	Report(ctx context.Context) (*ReportResult, error)

	// ReportPDF renders the downloadable ledger document.
	ReportPDF(ctx context.Context) ([]byte, error)

	// ShareReport sends the share text to a WhatsApp number.
	// Returns ErrShareDisabled when no messaging channel is configured.
	ShareReport(ctx context.Context, to string) error

	// WaitlistJoined reports whether this installation already signed up.
	WaitlistJoined(ctx context.Context) (bool, error)

	// JoinWaitlist validates and captures a waitlist signup.
	JoinWaitlist(ctx context.Context, shopName, phone string) error
}

// Options are the optional collaborators of the Service.
type Options struct {
	ShareClient share.Client // nil disables ShareReport
	Transcriber Transcriber  // nil disables SubmitVoice
	Logger      *zap.Logger
	TurnTimeout time.Duration
	Clock       func() time.Time
}

// Service is the concrete ApplicationService for a single shop session.
type Service struct {
	mu          sync.Mutex
	session     *core.Session
	store       store.Store
	interpreter ai.Interpreter
	shareClient share.Client
	transcriber Transcriber
	logger      *zap.Logger
	turnTimeout time.Duration
	clock       func() time.Time
}

func NewService(st store.Store, interpreter ai.Interpreter, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.TurnTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		session:     core.NewSession(""),
		store:       st,
		interpreter: interpreter,
		shareClient: opts.ShareClient,
		transcriber: opts.Transcriber,
		logger:      logger,
		turnTimeout: timeout,
		clock:       clock,
	}
}

// Bootstrap restores the session from the persisted setup record, if any.
// Called once at startup; a missing record is not an error.
func (s *Service) Bootstrap(ctx context.Context) error {
	rec, err := s.store.LoadSetup(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load setup: %w", err)
	}
	s.resetSession(rec.Name, rec.Stock)
	s.logger.Info("session restored from setup record", zap.String("shop", rec.Name))
	return nil
}

func (s *Service) resetSession(name, stockBlob string) {
	session := core.NewSession(name)
	session.SeedStock(core.ParseInitialStock(stockBlob), s.clock())
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
}

func (s *Service) currentSession() *core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Service) Setup(ctx context.Context) (*store.SetupRecord, error) {
	rec, err := s.store.LoadSetup(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotSetUp
	}
	if err != nil {
		return nil, fmt.Errorf("load setup: %w", err)
	}
	return rec, nil
}

func (s *Service) CompleteSetup(ctx context.Context, name, stockBlob string) (*LedgerSnapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyShopName
	}

	rec := store.SetupRecord{Name: name, Stock: strings.TrimSpace(stockBlob)}
	if err := s.store.SaveSetup(ctx, rec); err != nil {
		// Best-effort persistence: the demo keeps working in memory.
		s.logger.Warn("failed to persist setup record", zap.Error(err))
	}

	s.resetSession(rec.Name, rec.Stock)
	snap := snapshotToLedger(s.currentSession().Snapshot())
	return &snap, nil
}

func (s *Service) SubmitUtterance(ctx context.Context, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyUtterance
	}

	session := s.currentSession()
	echo, err := session.BeginTurn(text, s.clock())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.turnTimeout)
	defer cancel()

	res, err := s.interpreter.Interpret(ctx, core.InterpretRequest{
		Utterance:       text,
		ShopName:        session.ShopName(),
		KnownStockNames: session.StockNames(),
	})
	if err != nil {
		s.logger.Warn("interpreter call failed", zap.Error(err))
		apology := session.FailTurn(s.clock())
		return &TurnResult{
			Messages: []core.ChatMessage{echo, apology},
			Ledger:   snapshotToLedger(session.Snapshot()),
		}, nil
	}

	reply, reportRequested := session.CompleteTurn(res, s.clock())
	return &TurnResult{
		Messages:        []core.ChatMessage{echo, reply},
		ReportRequested: reportRequested,
		Ledger:          snapshotToLedger(session.Snapshot()),
	}, nil
}

func (s *Service) SubmitVoice(ctx context.Context) (*TurnResult, error) {
	if s.transcriber == nil {
		return nil, ErrNoTranscriber
	}
	text, err := s.transcriber.TranscribeOnce(ctx)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	return s.SubmitUtterance(ctx, text)
}

func (s *Service) Ledger(ctx context.Context) (*LedgerSnapshot, error) {
	snap := snapshotToLedger(s.currentSession().Snapshot())
	return &snap, nil
}

func (s *Service) ChatLog(ctx context.Context) ([]core.ChatMessage, error) {
	return s.currentSession().Snapshot().Messages, nil
}

func (s *Service) Report(ctx context.Context) (*ReportResult, error) {
	session := s.currentSession()
	snap := session.Snapshot()
	now := s.clock()
	session.AcknowledgeReport()
	return &ReportResult{
		ShareText:              report.ShareText(snap.ShopName, snap.Stock, snap.Credits, now),
		TotalStockValue:        snap.TotalStockValue,
		TotalCreditOutstanding: snap.TotalCreditOutstanding,
		GeneratedAt:            now,
	}, nil
}

func (s *Service) ReportPDF(ctx context.Context) ([]byte, error) {
	snap := s.currentSession().Snapshot()
	doc, err := report.PDF(snap.ShopName, snap.Stock, snap.Credits, s.clock())
	if err != nil {
		return nil, fmt.Errorf("export report: %w", err)
	}
	return doc, nil
}

func (s *Service) ShareReport(ctx context.Context, to string) error {
	if s.shareClient == nil {
		return ErrShareDisabled
	}
	snap := s.currentSession().Snapshot()
	text := report.ShareText(snap.ShopName, snap.Stock, snap.Credits, s.clock())
	if err := s.shareClient.SendText(ctx, to, text); err != nil {
		return fmt.Errorf("share report: %w", err)
	}
	return nil
}

func (s *Service) WaitlistJoined(ctx context.Context) (bool, error) {
	joined, err := s.store.WaitlistJoined(ctx)
	if err != nil {
		s.logger.Warn("failed to read waitlist flag", zap.Error(err))
		return false, nil
	}
	return joined, nil
}

func (s *Service) JoinWaitlist(ctx context.Context, shopName, phone string) error {
	if digitCount(phone) < 10 {
		return ErrInvalidPhone
	}
	entry := store.WaitlistEntry{
		ShopName: strings.TrimSpace(shopName),
		Phone:    strings.TrimSpace(phone),
		JoinedAt: s.clock(),
	}
	if err := s.store.JoinWaitlist(ctx, entry); err != nil {
		// Lead capture is best-effort; the visitor flow continues.
		s.logger.Warn("failed to persist waitlist signup", zap.Error(err))
	}
	return nil
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

func snapshotToLedger(snap core.SessionSnapshot) LedgerSnapshot {
	return LedgerSnapshot{
		ShopName:               snap.ShopName,
		Stock:                  snap.Stock,
		Credits:                snap.Credits,
		TotalStockValue:        snap.TotalStockValue,
		TotalCreditOutstanding: snap.TotalCreditOutstanding,
	}
}
