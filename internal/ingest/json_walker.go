package ingest

import (
	"fmt"
	"sync"

	"github.com/ohler55/ojg/jp"
)

// JsonWalker selects records out of a parsed export with JSONPath.
// Compiled expressions are reused across queries.
type JsonWalker struct {
	mu       sync.Mutex
	compiled map[string]jp.Expr
}

func NewJsonWalker() *JsonWalker {
	return &JsonWalker{compiled: make(map[string]jp.Expr)}
}

func (w *JsonWalker) expr(selector string) (jp.Expr, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if x, ok := w.compiled[selector]; ok {
		return x, nil
	}
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}
	w.compiled[selector] = x
	return x, nil
}

// Query returns every value selector matches under root.
func (w *JsonWalker) Query(root any, selector string) ([]any, error) {
	x, err := w.expr(selector)
	if err != nil {
		return nil, err
	}
	return x.Get(root), nil
}
