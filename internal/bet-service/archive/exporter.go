// Package archive exporta as apostas arquivadas em JSONL para o blob store.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/radieske/pub-bets/internal/bets"
	"github.com/radieske/pub-bets/internal/catalog"
)

// Writer é o que o exporter precisa do blob store
type Writer interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

// Record é uma linha do arquivo: a aposta mais o resultado no momento do arquivamento
type Record struct {
	bets.Bet
	Settlement bets.Settlement `json:"settlement"`
}

type Exporter struct {
	w      Writer
	prefix string
	now    func() time.Time
}

func NewExporter(w Writer, prefix string) *Exporter {
	return &Exporter{w: w, prefix: prefix, now: time.Now}
}

// Export grava um arquivo por arquivamento: <prefix>/YYYY/MM/DD/<timestamp>.jsonl.
// Lista vazia não gera arquivo.
func (e *Exporter) Export(ctx context.Context, archived []bets.Bet, c catalog.Catalog) (string, error) {
	if len(archived) == 0 {
		return "", nil
	}

	lookup := catalog.Lookup(c)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for i, b := range archived {
		if err := enc.Encode(Record{Bet: b, Settlement: bets.Settle(b, lookup)}); err != nil {
			return "", fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}

	now := e.now().UTC()
	key := path.Join(e.prefix, now.Format("2006/01/02"), now.Format("20060102T150405.000Z")+".jsonl")
	if err := e.w.Put(ctx, key, &buf, "application/x-ndjson"); err != nil {
		return "", err
	}
	return key, nil
}
