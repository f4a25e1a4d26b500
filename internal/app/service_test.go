package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dukaan-guru/internal/app"
	"dukaan-guru/internal/core"
	"dukaan-guru/internal/store"

	"github.com/shopspring/decimal"
)

// fakeInterpreter returns a canned result, or blocks until released when
// block is set, to exercise the in-flight turn guard.
type fakeInterpreter struct {
	mu      sync.Mutex
	result  *core.InterpretResult
	err     error
	block   chan struct{}
	lastReq core.InterpretRequest
}

func (f *fakeInterpreter) Interpret(ctx context.Context, req core.InterpretRequest) (*core.InterpretResult, error) {
	f.mu.Lock()
	f.lastReq = req
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeTranscriber struct{ text string }

func (f fakeTranscriber) TranscribeOnce(ctx context.Context) (string, error) {
	return f.text, nil
}

func newService(t *testing.T, interp *fakeInterpreter, opts app.Options) *app.Service {
	t.Helper()
	svc := app.NewService(store.NewMemory(), interp, opts)
	if _, err := svc.CompleteSetup(context.Background(), "Madina General Store", "20 Pepsi 50"); err != nil {
		t.Fatalf("CompleteSetup: %v", err)
	}
	return svc
}

func TestService_SubmitUtterance_Success(t *testing.T) {
	interp := &fakeInterpreter{result: &core.InterpretResult{
		ConfirmationMessage: "5 Pepsi ki sale likh li.",
		Items:               []core.LineItem{{Name: "pepsi", Quantity: 5, Kind: "sale", Action: "upsert"}},
	}}
	svc := newService(t, interp, app.Options{})

	res, err := svc.SubmitUtterance(context.Background(), "5 pepsi bik gaye")
	if err != nil {
		t.Fatalf("SubmitUtterance: %v", err)
	}

	if len(res.Messages) != 2 || res.Messages[0].Role != core.RoleUser || res.Messages[1].Role != core.RoleAssistant {
		t.Errorf("expected echo plus reply, got %+v", res.Messages)
	}
	if res.Ledger.Stock[0].Quantity != 15 {
		t.Errorf("batch not reconciled: %+v", res.Ledger.Stock)
	}
	if !res.Ledger.TotalStockValue.Equal(decimal.NewFromInt(750)) {
		t.Errorf("total = %s, want 750", res.Ledger.TotalStockValue)
	}

	// The interpreter saw the shop context.
	if interp.lastReq.ShopName != "Madina General Store" {
		t.Errorf("interpreter shop name = %q", interp.lastReq.ShopName)
	}
	if len(interp.lastReq.KnownStockNames) != 1 || interp.lastReq.KnownStockNames[0] != "Pepsi" {
		t.Errorf("interpreter stock names = %v", interp.lastReq.KnownStockNames)
	}
}

func TestService_SubmitUtterance_InterpreterFailure(t *testing.T) {
	interp := &fakeInterpreter{err: errors.New("network down")}
	svc := newService(t, interp, app.Options{})

	res, err := svc.SubmitUtterance(context.Background(), "kuch bhi")
	if err != nil {
		t.Fatalf("interpreter failure must not surface as an error: %v", err)
	}
	last := res.Messages[len(res.Messages)-1]
	if last.Text != core.ApologyMessage || !last.IsError {
		t.Errorf("expected apology with error marker, got %+v", last)
	}
	if res.Ledger.Stock[0].Quantity != 20 {
		t.Errorf("ledger must be unchanged after a failed turn")
	}

	// The session must be idle again: a manual resubmit works.
	interp.err = nil
	interp.result = &core.InterpretResult{ConfirmationMessage: "ok"}
	if _, err := svc.SubmitUtterance(context.Background(), "dobara"); err != nil {
		t.Errorf("resubmit after failure: %v", err)
	}
}

func TestService_SubmitUtterance_RejectsConcurrentTurn(t *testing.T) {
	block := make(chan struct{})
	interp := &fakeInterpreter{block: block, result: &core.InterpretResult{ConfirmationMessage: "ok"}}
	svc := newService(t, interp, app.Options{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := svc.SubmitUtterance(context.Background(), "pehla"); err != nil {
			t.Errorf("first turn: %v", err)
		}
	}()

	// Wait for the first turn to be awaiting the interpreter.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := svc.SubmitUtterance(context.Background(), "doosra"); errors.Is(err, core.ErrTurnInProgress) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("second turn was never rejected")
		}
		time.Sleep(5 * time.Millisecond)
	}

	close(block)
	<-done
}

func TestService_SubmitUtterance_TimesOut(t *testing.T) {
	interp := &fakeInterpreter{block: make(chan struct{})}
	svc := newService(t, interp, app.Options{TurnTimeout: 20 * time.Millisecond})

	res, err := svc.SubmitUtterance(context.Background(), "slow call")
	if err != nil {
		t.Fatalf("timeout must degrade to the apology path: %v", err)
	}
	last := res.Messages[len(res.Messages)-1]
	if last.Text != core.ApologyMessage {
		t.Errorf("expected apology after timeout, got %+v", last)
	}
}

func TestService_SubmitUtterance_EmptyText(t *testing.T) {
	svc := newService(t, &fakeInterpreter{result: &core.InterpretResult{}}, app.Options{})
	if _, err := svc.SubmitUtterance(context.Background(), "   "); !errors.Is(err, app.ErrEmptyUtterance) {
		t.Errorf("err = %v, want ErrEmptyUtterance", err)
	}
}

func TestService_SubmitVoice(t *testing.T) {
	interp := &fakeInterpreter{result: &core.InterpretResult{ConfirmationMessage: "ok"}}

	svc := newService(t, interp, app.Options{})
	if _, err := svc.SubmitVoice(context.Background()); !errors.Is(err, app.ErrNoTranscriber) {
		t.Errorf("without transcriber err = %v, want ErrNoTranscriber", err)
	}

	svc = newService(t, interp, app.Options{Transcriber: fakeTranscriber{text: "2 lays aaye 30 ke"}})
	res, err := svc.SubmitVoice(context.Background())
	if err != nil {
		t.Fatalf("SubmitVoice: %v", err)
	}
	if res.Messages[0].Text != "2 lays aaye 30 ke" {
		t.Errorf("voice text not submitted: %+v", res.Messages[0])
	}
}

func TestService_SetupAndBootstrap(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	interp := &fakeInterpreter{result: &core.InterpretResult{}}

	svc := app.NewService(st, interp, app.Options{})
	if _, err := svc.Setup(ctx); !errors.Is(err, app.ErrNotSetUp) {
		t.Errorf("Setup before setup err = %v, want ErrNotSetUp", err)
	}
	if _, err := svc.CompleteSetup(ctx, "  ", "x"); !errors.Is(err, app.ErrEmptyShopName) {
		t.Errorf("blank name err = %v, want ErrEmptyShopName", err)
	}

	snap, err := svc.CompleteSetup(ctx, "Madina", "10 Lays 500, 20 Pepsi 1000")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Stock) != 2 || !snap.TotalStockValue.Equal(decimal.NewFromInt(25000)) {
		t.Errorf("seeded ledger wrong: %+v", snap)
	}

	// A fresh service over the same store restores the session.
	svc2 := app.NewService(st, interp, app.Options{})
	if err := svc2.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	ledger, _ := svc2.Ledger(ctx)
	if ledger.ShopName != "Madina" || len(ledger.Stock) != 2 {
		t.Errorf("bootstrap did not restore session: %+v", ledger)
	}
}

func TestService_Waitlist(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, &fakeInterpreter{result: &core.InterpretResult{}}, app.Options{})

	if err := svc.JoinWaitlist(ctx, "Madina", "0300"); !errors.Is(err, app.ErrInvalidPhone) {
		t.Errorf("short phone err = %v, want ErrInvalidPhone", err)
	}
	if err := svc.JoinWaitlist(ctx, "Madina", "0300-1234567"); err != nil {
		t.Fatal(err)
	}
	joined, _ := svc.WaitlistJoined(ctx)
	if !joined {
		t.Errorf("waitlist flag not set after join")
	}
}

func TestService_ShareDisabledWithoutClient(t *testing.T) {
	svc := newService(t, &fakeInterpreter{result: &core.InterpretResult{}}, app.Options{})
	if err := svc.ShareReport(context.Background(), "03001234567"); !errors.Is(err, app.ErrShareDisabled) {
		t.Errorf("err = %v, want ErrShareDisabled", err)
	}
}

func TestService_ReportClearsFlag(t *testing.T) {
	interp := &fakeInterpreter{result: &core.InterpretResult{ConfirmationMessage: "yeh raha hisab", GenerateReport: true}}
	svc := newService(t, interp, app.Options{})

	res, err := svc.SubmitUtterance(context.Background(), "hisab kitab dikhao")
	if err != nil {
		t.Fatal(err)
	}
	if !res.ReportRequested {
		t.Fatalf("report not requested: %+v", res)
	}

	rep, err := svc.Report(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.ShareText == "" || !rep.TotalStockValue.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("unexpected report: %+v", rep)
	}

	log, _ := svc.ChatLog(context.Background())
	if len(log) != 2 {
		t.Errorf("chat log len = %d, want 2", len(log))
	}
}
