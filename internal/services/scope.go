package services

import (
	"context"
	"fmt"
	"strings"

	"eventmanager/internal/domain"
)

// normalizeGrantRequest checks the shape of req before any store access and drops
// inputs the chosen scope does not use. Person data is replaced by a normalized copy
// so the caller's value is never modified. An empty block list is left for
// validateBlocks, which runs after the event is known to exist.
func normalizeGrantRequest(req *domain.GrantRequest) error {
	req.EventID = strings.TrimSpace(req.EventID)
	if req.EventID == "" {
		return domain.Invalid(domain.KeyEventIDRequired, "event_id is required")
	}
	if req.PersonID != nil && strings.TrimSpace(*req.PersonID) == "" {
		req.PersonID = nil
	}
	if (req.PersonID == nil) == (req.PersonData == nil) {
		return domain.Invalid(domain.KeyPersonRequired, "exactly one of person_id or person_data is required")
	}
	if req.PersonData != nil {
		data := *req.PersonData
		data.Normalize()
		req.PersonData = &data
		if errs := data.Validate(); len(errs) > 0 {
			return domain.Invalid(domain.KeyPersonDataInvalid, strings.Join(errs, "; "))
		}
	}
	if !req.Type.Valid() {
		return domain.Invalid(domain.KeyInvalidType, fmt.Sprintf("unknown courtesy type %q", req.Type))
	}
	if !req.Scope.Valid() {
		return domain.Invalid(domain.KeyInvalidScope, fmt.Sprintf("unknown courtesy scope %q", req.Scope))
	}
	if req.SpeakerID != nil && strings.TrimSpace(*req.SpeakerID) == "" {
		req.SpeakerID = nil
	}

	switch req.Scope {
	case domain.CourtesyScopeSpecificBlocks:
		req.SpecificBlockIDs = dedupe(req.SpecificBlockIDs)
	case domain.CourtesyScopeAssignedSession:
		req.SpecificBlockIDs = nil
		if req.Type == domain.CourtesyTypeSpeaker && req.SpeakerID == nil {
			return domain.Invalid(domain.KeySpeakerRequired, "speaker_id is required for speaker courtesies scoped to assigned sessions")
		}
	default:
		req.SpecificBlockIDs = nil
	}
	return nil
}

// validateBlocks loads every requested block and fails unless all exist, belong to
// eventID and are active. The result keeps the order of ids.
func validateBlocks(ctx context.Context, tx domain.Store, eventID string, ids []string) ([]*domain.EvaluableBlock, error) {
	if len(ids) == 0 {
		return nil, domain.Invalid(domain.KeyBlocksRequired, "specific_block_ids is required for scope SPECIFIC_BLOCKS")
	}
	found, err := tx.Blocks().ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	byID := make(map[string]*domain.EvaluableBlock, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}

	blocks := make([]*domain.EvaluableBlock, 0, len(ids))
	var bad []string
	for _, id := range ids {
		b, ok := byID[id]
		if !ok || b.EventID != eventID || !b.IsActive {
			bad = append(bad, id)
			continue
		}
		blocks = append(blocks, b)
	}
	if len(bad) > 0 {
		return nil, domain.Invalid(domain.KeyBlocksInvalid,
			"blocks missing, inactive or not part of the event: "+strings.Join(bad, ", "))
	}
	return blocks, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
