package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tachyon-beep/jubilant-fortnight/internal/model"
)

type offerRow struct {
	ID            string         `db:"id"`
	Scholar       string         `db:"scholar"`
	TargetFaction string         `db:"target_faction"`
	Rival         string         `db:"rival"`
	Patron        string         `db:"patron"`
	OfferType     string         `db:"offer_type"`
	InfluenceJSON string         `db:"influence_json"`
	TermsJSON     string         `db:"terms_json"`
	Status        string         `db:"status"`
	ParentOfferID string         `db:"parent_offer_id"`
	CreatedAt     string         `db:"created_at"`
	ResolvedAt    sql.NullString `db:"resolved_at"`
}

func (r offerRow) toModel() (*model.OfferRecord, error) {
	o := &model.OfferRecord{
		ID:            r.ID,
		Scholar:       r.Scholar,
		TargetFaction: r.TargetFaction,
		Rival:         r.Rival,
		Patron:        r.Patron,
		OfferType:     model.OfferType(r.OfferType),
		Status:        model.OfferStatus(r.Status),
		ParentOfferID: r.ParentOfferID,
		CreatedAt:     parseTime(r.CreatedAt),
		ResolvedAt:    parseNullTime(r.ResolvedAt),
	}
	if err := json.Unmarshal([]byte(r.InfluenceJSON), &o.InfluenceOffered); err != nil {
		return nil, fmt.Errorf("offer %s influence: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.TermsJSON), &o.Terms); err != nil {
		return nil, fmt.Errorf("offer %s terms: %w", r.ID, err)
	}
	return o, nil
}

// SaveOffer inserts or rewrites an offer row.
func (s *Store) SaveOffer(o *model.OfferRecord) error {
	_, err := s.conn.Exec(`INSERT INTO offers
		(id, scholar, target_faction, rival, patron, offer_type, influence_json, terms_json, status, parent_offer_id, created_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			resolved_at = excluded.resolved_at`,
		o.ID, o.Scholar, o.TargetFaction, o.Rival, o.Patron, string(o.OfferType),
		marshal(o.InfluenceOffered), marshal(o.Terms), string(o.Status),
		o.ParentOfferID, fmtTime(o.CreatedAt), fmtNullTime(o.ResolvedAt),
	)
	if err != nil {
		return fmt.Errorf("save offer %s: %w", o.ID, err)
	}
	return nil
}

// GetOffer returns an offer by id, or nil.
func (s *Store) GetOffer(id string) (*model.OfferRecord, error) {
	var row offerRow
	err := s.conn.Get(&row, "SELECT * FROM offers WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get offer %s: %w", id, err)
	}
	return row.toModel()
}

// OfferChain walks an offer's negotiation ladder: up to the root, then
// every descendant, in creation order. The chain is reconstructed from
// parent_offer_id adjacency rows.
func (s *Store) OfferChain(id string) ([]*model.OfferRecord, error) {
	root, err := s.GetOffer(id)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, nil
	}
	for root.ParentOfferID != "" {
		parent, err := s.GetOffer(root.ParentOfferID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		root = parent
	}

	// Collect the root and all descendants breadth-first.
	chain := []*model.OfferRecord{root}
	frontier := []string{root.ID}
	for len(frontier) > 0 {
		query, args, err := sqlx.In("SELECT * FROM offers WHERE parent_offer_id IN (?) ORDER BY created_at, id", frontier)
		if err != nil {
			return nil, fmt.Errorf("offer chain query: %w", err)
		}
		var rows []offerRow
		if err := s.conn.Select(&rows, s.conn.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("offer chain children: %w", err)
		}
		frontier = frontier[:0]
		for _, row := range rows {
			child, err := row.toModel()
			if err != nil {
				return nil, err
			}
			chain = append(chain, child)
			frontier = append(frontier, child.ID)
		}
	}
	return chain, nil
}

// PendingOffersForScholar returns every pending offer targeting a scholar.
func (s *Store) PendingOffersForScholar(scholarID string) ([]*model.OfferRecord, error) {
	var rows []offerRow
	err := s.conn.Select(&rows,
		"SELECT * FROM offers WHERE scholar = ? AND status = ? ORDER BY created_at, id",
		scholarID, string(model.OfferPending))
	if err != nil {
		return nil, fmt.Errorf("pending offers for %s: %w", scholarID, err)
	}
	out := make([]*model.OfferRecord, 0, len(rows))
	for _, row := range rows {
		o, err := row.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// ResolveOffer stamps a terminal status and resolution time on an offer.
func (s *Store) ResolveOffer(id string, status model.OfferStatus, now time.Time) error {
	_, err := s.conn.Exec(
		"UPDATE offers SET status = ?, resolved_at = ? WHERE id = ?",
		string(status), fmtTime(now), id,
	)
	if err != nil {
		return fmt.Errorf("resolve offer %s: %w", id, err)
	}
	return nil
}
