package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tropicaldog17/cryptofolio/internal/models"
	"github.com/tropicaldog17/cryptofolio/internal/repositories"
)

// snapshotKey is the single key the whole portfolio document lives under.
const snapshotKey = "crypto_portfolio_v2"

// PortfolioService owns the canonical in-memory position list and is the only
// component allowed to mutate it. Callers get deep-copied snapshots; every
// mutation goes through one of the narrow operations below and ends with a
// full persisted snapshot replace.
type PortfolioService struct {
	mu            sync.RWMutex
	positions     []models.Position
	repo          repositories.SnapshotRepository
	adapter       *SchemaAdapter
	bootstrapPath string
	log           *zap.Logger
	onChange      func()
}

// NewPortfolioService creates the portfolio store. bootstrapPath points at the
// default document loaded on first run or when persisted data is unusable.
func NewPortfolioService(repo repositories.SnapshotRepository, adapter *SchemaAdapter, bootstrapPath string, log *zap.Logger) *PortfolioService {
	return &PortfolioService{
		repo:          repo,
		adapter:       adapter,
		bootstrapPath: bootstrapPath,
		log:           log,
	}
}

// SetOnChange registers the change-notification hook invoked after every
// persisted mutation. The renderer is an external collaborator; the store
// only signals that derived rows need recomputing.
func (s *PortfolioService) SetOnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Load reads the persisted snapshot, falling back to the bootstrap document
// when the snapshot is absent or malformed. Positions missing an identifier
// are backfilled through the symbol resolver on every load, repairing stale
// persisted data. Load never fails on bad data, only on storage errors.
func (s *PortfolioService) Load(ctx context.Context) error {
	data, err := s.repo.Get(ctx, snapshotKey)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	positions, ok := decodeSnapshot(data)
	if !ok {
		if data != "" {
			s.log.Warn("persisted snapshot malformed, falling back to bootstrap")
		}
		positions = s.loadBootstrap()
	}

	repaired := positions[:0]
	for _, p := range positions {
		// Empty positions never persist; a fill-less entry in old data is
		// dropped on load.
		if len(p.Fills) == 0 {
			continue
		}
		if p.Identifier == "" {
			p.Identifier = ResolveSymbol(p.Symbol)
		}
		repaired = append(repaired, p)
	}
	positions = repaired

	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = positions
	return s.save(ctx)
}

// decodeSnapshot reports whether the persisted document passes structural
// validation. Anything that does not is treated as absent.
func decodeSnapshot(data string) ([]models.Position, bool) {
	if data == "" {
		return nil, false
	}
	var positions []models.Position
	if err := json.Unmarshal([]byte(data), &positions); err != nil {
		return nil, false
	}
	for i := range positions {
		if err := positions[i].Validate(); err != nil {
			return nil, false
		}
	}
	return positions, true
}

func (s *PortfolioService) loadBootstrap() []models.Position {
	data, err := os.ReadFile(s.bootstrapPath)
	if err != nil {
		s.log.Info("no bootstrap document found", zap.String("path", s.bootstrapPath))
		return nil
	}
	positions, err := s.adapter.Normalize(data)
	if err != nil {
		s.log.Warn("bootstrap document unusable", zap.Error(err))
		return nil
	}
	return positions
}

// Positions returns a deep-copied snapshot of the canonical list.
func (s *PortfolioService) Positions() []models.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ClonePositions(s.positions)
}

// ResolvedIdentifiers returns the deduplicated set of feed identifiers across
// all positions. Unresolved positions are skipped.
func (s *PortfolioService) ResolvedIdentifiers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dedupIdentifiers(s.positions, false)
}

// MissingIconIdentifiers returns identifiers of resolved positions that still
// have no icon.
func (s *PortfolioService) MissingIconIdentifiers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dedupIdentifiers(s.positions, true)
}

func dedupIdentifiers(positions []models.Position, missingIconOnly bool) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, p := range positions {
		if p.Identifier == "" {
			continue
		}
		if missingIconOnly && p.Icon != "" {
			continue
		}
		if _, dup := seen[p.Identifier]; dup {
			continue
		}
		seen[p.Identifier] = struct{}{}
		ids = append(ids, p.Identifier)
	}
	return ids
}

// AddFill appends a fill to the position matching the selection's feed
// identifier, or creates a new position when none matches. Matching is by
// identifier rather than display symbol so ambiguous tickers cannot produce
// duplicate positions; a selection without an identifier matches by symbol,
// case-insensitively, so one symbol never holds two positions. A missing
// fill id is generated.
func (s *PortfolioService) AddFill(ctx context.Context, sel models.CoinSelection, fill models.Fill) error {
	if fill.ID == "" {
		fill.ID = uuid.NewString()
	}
	if err := fill.Validate(); err != nil {
		return err
	}
	if sel.Symbol == "" {
		return fmt.Errorf("coin selection missing symbol")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.positions {
		match := s.positions[i].Identifier == sel.ID
		if sel.ID == "" {
			// Unresolved selections can only match by display symbol.
			match = strings.EqualFold(s.positions[i].Symbol, sel.Symbol)
		}
		if match {
			s.positions[i].Fills = append(s.positions[i].Fills, fill)
			return s.save(ctx)
		}
	}

	s.positions = append(s.positions, models.Position{
		Symbol:     sel.Symbol,
		Name:       sel.Name,
		Identifier: sel.ID,
		Icon:       sel.Thumb,
		Fills:      []models.Fill{fill},
	})
	return s.save(ctx)
}

// DeleteFill removes one fill from the position with the given symbol. When
// the last fill goes, the position goes with it; empty positions never
// persist. The caller is responsible for confirming the destructive action
// beforehand; the store deletes unconditionally.
func (s *PortfolioService) DeleteFill(ctx context.Context, symbol, fillID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.positions {
		if !strings.EqualFold(s.positions[i].Symbol, symbol) {
			continue
		}
		fills := s.positions[i].Fills[:0]
		for _, f := range s.positions[i].Fills {
			if f.ID != fillID {
				fills = append(fills, f)
			}
		}
		if len(fills) == len(s.positions[i].Fills) {
			return nil
		}
		if len(fills) == 0 {
			s.positions = append(s.positions[:i], s.positions[i+1:]...)
		} else {
			s.positions[i].Fills = fills
		}
		return s.save(ctx)
	}
	return nil
}

// ReplaceAll swaps the whole canonical list, used by import. The previous
// list is only discarded once the new one is in place and persisted.
func (s *PortfolioService) ReplaceAll(ctx context.Context, positions []models.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = models.ClonePositions(positions)
	return s.save(ctx)
}

// ApplyQuotes writes current price and 24h change to every position sharing
// a quoted identifier.
func (s *PortfolioService) ApplyQuotes(ctx context.Context, quotes map[string]Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.positions {
		q, ok := quotes[s.positions[i].Identifier]
		if !ok {
			continue
		}
		change := q.Change24h
		s.positions[i].CurrentPrice = q.PriceUSD
		s.positions[i].Change24h = &change
		changed = true
	}
	if !changed {
		return nil
	}
	return s.save(ctx)
}

// ApplyIcons fills in icons per matching identifier, but only where one is
// still missing; an icon that is already set is never overwritten.
func (s *PortfolioService) ApplyIcons(ctx context.Context, icons map[string]string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.positions {
		icon, ok := icons[s.positions[i].Identifier]
		if !ok || icon == "" || s.positions[i].Icon != "" {
			continue
		}
		s.positions[i].Icon = icon
		changed = true
	}
	if !changed {
		return false, nil
	}
	return true, s.save(ctx)
}

// save persists the full current list and fires the change hook. The caller
// must hold the write lock.
func (s *PortfolioService) save(ctx context.Context) error {
	data, err := json.Marshal(s.positions)
	if err != nil {
		return fmt.Errorf("failed to serialize portfolio: %w", err)
	}
	if err := s.repo.Put(ctx, snapshotKey, string(data)); err != nil {
		return err
	}
	if s.onChange != nil {
		s.onChange()
	}
	return nil
}
