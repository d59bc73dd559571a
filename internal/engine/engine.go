package engine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mtoporowski/stovokor/internal/cachestore"
	"github.com/mtoporowski/stovokor/internal/config"
	"github.com/mtoporowski/stovokor/internal/gen"
)

// NodeHandle is the engine's view of a document node. The document layer
// owns mutation; the engine only reads the current text and reports the
// replacement.
type NodeHandle interface {
	Text() string
}

// Result reports the outcome of processing one node. Replaced is false when
// the generator passed the input through (unsupported or invalid value) or
// when an argument error occurred; the caller decides how to annotate that.
type Result struct {
	Replaced bool
	NewText  string
}

// Engine evaluates path rules against document nodes for one processing run.
type Engine struct {
	cfg   *config.Config
	cache *Cache
	store *cachestore.Store
	runID string
	log   *slog.Logger
}

// New builds an engine from a validated configuration. When the
// configuration names a cache file, cached substitutions are persisted there
// across runs; otherwise the cache lives and dies with the run.
func New(cfg *config.Config) (*Engine, error) {
	var store *cachestore.Store
	if cfg.CacheFile != "" {
		var err error
		store, err = cachestore.Open(cfg.CacheFile)
		if err != nil {
			return nil, err
		}
	}
	runID := uuid.NewString()
	return &Engine{
		cfg:   cfg,
		cache: NewCache(store),
		store: store,
		runID: runID,
		log:   slog.Default().With("run", runID),
	}, nil
}

// Close releases the persistent cache store, if any.
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// RunID returns the unique token of this processing run.
func (e *Engine) RunID() string {
	return e.runID
}

// Rules returns the path rules in declaration order. The document layer
// evaluates each selector in this order and offers every matched node to
// ProcessNode; a node already claimed by an earlier selector must not be
// offered again.
func (e *Engine) Rules() []config.PathRule {
	return e.cfg.Paths
}

// Match returns the first path rule with the given selector. The document
// layer does not use it: evaluating every rule of Rules in order with a
// claimed-node set is what keeps duplicate selectors ordered. Match exists
// for callers that resolve selectors themselves and only need the winning
// rule for one of them.
func (e *Engine) Match(selector string) (config.PathRule, bool) {
	for _, pr := range e.cfg.Paths {
		if pr.Selector == selector {
			return pr, true
		}
	}
	return config.PathRule{}, false
}

// ProcessNode resolves the rule's generator expression against the node's
// current text and runs the generator, honoring the rule's caching policy.
//
// The returned error is per-node: the run continues and the node stays
// unmodified. A nil error with Replaced=false means the generator passed
// the input through deliberately.
func (e *Engine) ProcessNode(ctx context.Context, node NodeHandle, rule config.PathRule) (Result, error) {
	text := node.Text()
	expanded := gen.Expand(rule.Rule.Expr, text)

	generate := func() (string, error) {
		args, err := gen.Split(expanded)
		if err != nil {
			return "", err
		}
		return gen.Generate(args)
	}

	var newText string
	var err error
	if rule.Rule.Policy == config.PolicyCached {
		key := Key{RuleID: rule.ID(), Expr: expanded}
		newText, err = e.cache.GetOrGenerate(ctx, key, generate)
	} else {
		newText, err = generate()
	}
	if err != nil {
		e.log.Warn("cannot obfuscate node", "selector", rule.Selector, "err", err)
		return Result{}, err
	}

	return Result{Replaced: newText != text, NewText: newText}, nil
}
