package ledger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"papertrade-go/internal/model"
)

func TestJSONLRecorderAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "transactions.jsonl")
	rec, err := NewJSONLRecorder(path)
	if err != nil {
		t.Fatalf("NewJSONLRecorder returned error: %v", err)
	}

	rec.Record(model.Transaction{UserID: "alice", Type: model.TypeTrade, BaseAsset: "BTC", QuoteAsset: "USD", Side: model.Buy, Quantity: 0.5, Price: 100, Timestamp: time.Now()})
	rec.Record(model.Transaction{UserID: "alice", Type: model.TypeDeposit, BaseAsset: "USD", QuoteAsset: "USD", Side: model.Buy, Quantity: 50, Price: 1, Timestamp: time.Now()})
	if err := rec.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open recorded file: %v", err)
	}
	defer file.Close()

	var lines []model.Transaction
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var tx model.Transaction
		if err := json.Unmarshal(scanner.Bytes(), &tx); err != nil {
			t.Fatalf("invalid JSONL line: %v", err)
		}
		lines = append(lines, tx)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(lines))
	}
	if lines[0].Quantity != 0.5 || lines[1].Type != model.TypeDeposit {
		t.Fatalf("unexpected contents %+v", lines)
	}
}
