package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/settleng/goledgerd/internal/core/tx"
)

// decodeTransaction builds a transaction from its JSON encoding, keyed
// by the TransactionType field.
func decodeTransaction(line []byte) (tx.Transaction, error) {
	var head struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(line, &head); err != nil {
		return nil, fmt.Errorf("malformed transaction: %w", err)
	}
	typ := tx.TypeFromName(head.TransactionType)
	if !tx.Registered(typ) {
		return nil, fmt.Errorf("unknown transaction type %q", head.TransactionType)
	}
	t, err := tx.New(typ)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(line, t); err != nil {
		return nil, fmt.Errorf("malformed %s: %w", head.TransactionType, err)
	}
	return t, nil
}

// submitLoop reads newline-delimited JSON transactions from the feed
// and applies each in order. Rejected submissions are logged and
// skipped; the loop ends at feed EOF or context cancellation.
func submitLoop(ctx context.Context, feed io.Reader, engine *tx.Engine, log zerolog.Logger) error {
	scanner := bufio.NewScanner(feed)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		t, err := decodeTransaction(line)
		if err != nil {
			log.Error().Err(err).Msg("rejected submission")
			continue
		}
		res := engine.Apply(t)
		log.Info().
			Str("type", t.TxType().String()).
			Str("result", res.Result.String()).
			Bool("applied", res.Applied).
			Msg("submission processed")
	}
	return scanner.Err()
}
